package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.MarkRepository
var _ repository.MarkRepository = (*DB)(nil)

// markTable maps a mark kind to its table. The kind is a closed enum, so
// interpolating the table name into SQL is safe; anything else is a
// programming error and panics early.
func markTable(kind model.MarkKind) string {
	switch kind {
	case model.MarkFavorite:
		return "favorites"
	case model.MarkShoppingCart:
		return "shopping_cart"
	default:
		panic(fmt.Sprintf("sqlite: unknown mark kind %q", kind))
	}
}

// AddMark inserts a (user, recipe) mark. The composite primary key is the
// sole duplicate guard: under concurrent double-submission one INSERT
// succeeds and the other fails atomically with a constraint violation,
// which surfaces as a conflict.
func (db *DB) AddMark(ctx context.Context, kind model.MarkKind, userID, recipeID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO `+markTable(kind)+` (user_id, recipe_id, created_at) VALUES (?, ?, ?)`,
		userID, recipeID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("recipe is already added")
		}
		return fmt.Errorf("sqlite: adding %s mark: %w", kind, err)
	}

	return nil
}

// RemoveMark deletes a mark; RowsAffected detects "was never marked".
func (db *DB) RemoveMark(ctx context.Context, kind model.MarkKind, userID, recipeID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+markTable(kind)+` WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s mark: %w", kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(string(kind)+" mark", recipeID)
	}

	return nil
}

func (db *DB) MarkExists(ctx context.Context, kind model.MarkKind, userID, recipeID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+markTable(kind)+` WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s mark: %w", kind, err)
	}
	return count > 0, nil
}

// MarkedRecipes reports which of recipeIDs the user has marked, in one
// query. Listing pages use this to decorate a whole page of recipes.
func (db *DB) MarkedRecipes(ctx context.Context, kind model.MarkKind, userID string, recipeIDs []string) (map[string]bool, error) {
	marked := make(map[string]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return marked, nil
	}

	args := make([]any, 0, len(recipeIDs)+1)
	args = append(args, userID)
	for _, id := range recipeIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT recipe_id FROM `+markTable(kind)+`
		 WHERE user_id = ? AND recipe_id IN (`+placeholders(len(recipeIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading %s marks: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mark row: %w", err)
		}
		marked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating marks: %w", err)
	}

	return marked, nil
}
