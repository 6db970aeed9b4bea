package sqlite

import (
	"context"
	"fmt"

	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.ShoppingListRepository
var _ repository.ShoppingListRepository = (*DB)(nil)

// AggregateShoppingList is the core of the shopping-list feature: every
// recipe in the user's cart, joined to its ingredient lines, grouped by the
// ingredient's (name, measurement_unit) identity and summed.
//
// Grouping is on name+unit rather than ingredient id: if the catalogue ever
// holds two rows with the same name and unit they merge here, while the
// same name under different units ("milk"/"ml" vs "milk"/"g") stays
// distinct. Comparison is exact — no case folding or normalization. The
// name/unit ordering is for deterministic output only; SQL GROUP BY
// guarantees none by itself.
func (db *DB) AggregateShoppingList(ctx context.Context, userID string) ([]model.ShoppingItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.name, i.measurement_unit, SUM(ri.amount)
		 FROM shopping_cart sc
		 JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sc.user_id = ?
		 GROUP BY i.name, i.measurement_unit
		 ORDER BY i.name, i.measurement_unit`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating shopping list: %w", err)
	}
	defer rows.Close()

	items := []model.ShoppingItem{}
	for rows.Next() {
		var item model.ShoppingItem
		if err := rows.Scan(&item.Name, &item.MeasurementUnit, &item.Total); err != nil {
			return nil, fmt.Errorf("sqlite: scanning shopping item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating shopping items: %w", err)
	}

	return items, nil
}
