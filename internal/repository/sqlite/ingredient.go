package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.IngredientRepository
var _ repository.IngredientRepository = (*DB)(nil)

// CreateIngredient inserts a catalogue ingredient. The UNIQUE(name,
// measurement_unit) constraint rejects duplicates.
func (db *DB) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	ingredient.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, measurement_unit) VALUES (?, ?, ?)`,
		ingredient.ID, ingredient.Name, ingredient.MeasurementUnit,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("this ingredient already exists")
		}
		return fmt.Errorf("sqlite: creating ingredient: %w", err)
	}

	return nil
}

func (db *DB) GetIngredientByID(ctx context.Context, id string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("ingredient", id)
		}
		return nil, fmt.Errorf("sqlite: getting ingredient %s: %w", id, err)
	}

	return &ing, nil
}

// GetIngredientsByIDs returns the ingredients for the given ids. Missing ids
// are absent from the result — the caller compares lengths to detect them.
func (db *DB) GetIngredientsByIDs(ctx context.Context, ids []string) ([]model.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting ingredients by ids: %w", err)
	}
	defer rows.Close()

	ingredients := make([]model.Ingredient, 0, len(ids))
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// ListIngredients returns ingredients whose name starts with prefix
// (case-insensitive for ASCII, LIKE semantics), ordered by name. An empty
// prefix returns the whole catalogue.
func (db *DB) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	var args []any
	if prefix != "" {
		// Escape LIKE wildcards in the user-supplied prefix.
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, escaped+"%")
	}
	query += ` ORDER BY name, measurement_unit`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.Ingredient
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// IngredientExists reports whether the (name, unit) pair is already in the
// catalogue. Used by the CSV seeder to skip rows loaded on a previous run.
func (db *DB) IngredientExists(ctx context.Context, name, measurementUnit string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ingredients WHERE name = ? AND measurement_unit = ?`,
		name, measurementUnit,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking ingredient existence: %w", err)
	}
	return count > 0, nil
}
