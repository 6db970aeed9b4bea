package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// compile-time check that *DB implements repository.RecipeRepository
var _ repository.RecipeRepository = (*DB)(nil)

// CreateRecipe persists the recipe row plus all its ingredient lines and tag
// links in a single transaction. If any insert fails (e.g. a vanished
// ingredient id hits the foreign key), the whole composition rolls back and
// no partial recipe becomes visible to readers.
func (db *DB) CreateRecipe(ctx context.Context, recipe *model.Recipe, lines []repository.IngredientLineInput, tagIDs []string) error {
	recipe.ID = xid.New().String()
	recipe.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (id, author_id, name, image, text, cooking_time, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recipe.ID,
			recipe.AuthorID,
			recipe.Name,
			recipe.Image,
			recipe.Text,
			recipe.CookingTime,
			recipe.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting recipe: %w", err)
		}

		return insertLinesAndLinks(ctx, tx, recipe.ID, lines, tagIDs)
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating recipe: %w", err)
	}

	return nil
}

// UpdateRecipe rewrites the recipe row and fully replaces its ingredient
// lines and tag links: delete-all-then-recreate inside one transaction, so
// concurrent readers never observe a recipe with zero ingredients and no
// stale line from before the update survives.
func (db *DB) UpdateRecipe(ctx context.Context, recipe *model.Recipe, lines []repository.IngredientLineInput, tagIDs []string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE recipes SET name = ?, image = ?, text = ?, cooking_time = ?
			 WHERE id = ?`,
			recipe.Name,
			recipe.Image,
			recipe.Text,
			recipe.CookingTime,
			recipe.ID,
		)
		if err != nil {
			return fmt.Errorf("updating recipe: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("recipe", recipe.ID)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipe.ID,
		); err != nil {
			return fmt.Errorf("clearing ingredient lines: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipe_tags WHERE recipe_id = ?`, recipe.ID,
		); err != nil {
			return fmt.Errorf("clearing tag links: %w", err)
		}

		return insertLinesAndLinks(ctx, tx, recipe.ID, lines, tagIDs)
	})
	if err != nil {
		return err
	}

	return nil
}

func insertLinesAndLinks(ctx context.Context, tx *sql.Tx, recipeID string, lines []repository.IngredientLineInput, tagIDs []string) error {
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
			 VALUES (?, ?, ?)`,
			recipeID, line.IngredientID, line.Amount,
		); err != nil {
			return fmt.Errorf("inserting ingredient line %s: %w", line.IngredientID, err)
		}
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`,
			recipeID, tagID,
		); err != nil {
			return fmt.Errorf("inserting tag link %s: %w", tagID, err)
		}
	}

	return nil
}

const recipeColumns = `r.id, r.author_id, r.name, r.image, r.text, r.cooking_time, r.created_at`

// GetRecipeByID returns the recipe with its ingredient lines and tags
// populated.
func (db *DB) GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error) {
	var r model.Recipe
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.AuthorID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %s: %w", id, err)
	}

	if err := db.populateRecipes(ctx, []*model.Recipe{&r}); err != nil {
		return nil, err
	}

	return &r, nil
}

// ListRecipes returns a page of recipes matching the filter, newest first,
// plus the total matching count.
//
// The filter translates almost directly into joins: tag slugs OR together
// via an IN over a recipe_tags join, membership filters join the mark
// tables. DISTINCT guards against the fan-out of the tag join.
func (db *DB) ListRecipes(ctx context.Context, filter repository.RecipeFilter, opts repository.ListOptions) ([]model.Recipe, int, error) {
	var (
		joins []string
		conds []string
		args  []any
	)

	if len(filter.TagSlugs) > 0 {
		joins = append(joins,
			`JOIN recipe_tags rt ON rt.recipe_id = r.id`,
			`JOIN tags t ON t.id = rt.tag_id`,
		)
		conds = append(conds, `t.slug IN (`+placeholders(len(filter.TagSlugs))+`)`)
		for _, slug := range filter.TagSlugs {
			args = append(args, slug)
		}
	}
	if filter.AuthorID != "" {
		conds = append(conds, `r.author_id = ?`)
		args = append(args, filter.AuthorID)
	}
	if filter.FavoritedBy != "" {
		joins = append(joins, `JOIN favorites f ON f.recipe_id = r.id`)
		conds = append(conds, `f.user_id = ?`)
		args = append(args, filter.FavoritedBy)
	}
	if filter.InCartOf != "" {
		joins = append(joins, `JOIN shopping_cart sc ON sc.recipe_id = r.id`)
		conds = append(conds, `sc.user_id = ?`)
		args = append(args, filter.InCartOf)
	}

	from := ` FROM recipes r`
	if len(joins) > 0 {
		from += " " + strings.Join(joins, " ")
	}
	if len(conds) > 0 {
		from += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT r.id)`+from, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting recipes: %w", err)
	}

	query := `SELECT DISTINCT ` + recipeColumns + from +
		` ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	recipes, err := db.queryRecipes(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// ListRecipesByAuthor returns up to limit of the author's recipes, newest
// first (limit <= 0 means all), plus the author's total recipe count. Used
// for the per-author previews on the subscriptions page.
func (db *DB) ListRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]model.Recipe, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE author_id = ?`, authorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting author recipes: %w", err)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r
		 WHERE r.author_id = ? ORDER BY r.created_at DESC, r.id`
	args := []any{authorID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	recipes, err := db.queryRecipes(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// DeleteRecipe removes a recipe; ingredient lines, tag links and marks go
// with it via ON DELETE CASCADE.
func (db *DB) DeleteRecipe(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("recipe", id)
	}

	return nil
}

// queryRecipes runs a recipe SELECT and populates lines and tags for every
// row of the result.
func (db *DB) queryRecipes(ctx context.Context, query string, args ...any) ([]model.Recipe, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		var r model.Recipe
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipes: %w", err)
	}

	ptrs := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		ptrs[i] = &recipes[i]
	}
	if err := db.populateRecipes(ctx, ptrs); err != nil {
		return nil, err
	}

	return recipes, nil
}

// populateRecipes fills Ingredients and Tags for the given recipes with two
// IN queries instead of a pair of queries per recipe.
func (db *DB) populateRecipes(ctx context.Context, recipes []*model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[string]*model.Recipe, len(recipes))
	args := make([]any, len(recipes))
	for i, r := range recipes {
		byID[r.ID] = r
		args[i] = r.ID
	}
	in := placeholders(len(recipes))

	rows, err := db.conn.QueryContext(ctx,
		`SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id IN (`+in+`)
		 ORDER BY i.name`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading ingredient lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID string
			line     model.IngredientLine
		)
		if err := rows.Scan(&recipeID, &line.Ingredient.ID, &line.Ingredient.Name,
			&line.Ingredient.MeasurementUnit, &line.Amount); err != nil {
			return fmt.Errorf("sqlite: scanning ingredient line: %w", err)
		}
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating ingredient lines: %w", err)
	}

	tagRows, err := db.conn.QueryContext(ctx,
		`SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id IN (`+in+`)
		 ORDER BY t.name`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading tag links: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			recipeID string
			tag      model.Tag
		)
		if err := tagRows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return fmt.Errorf("sqlite: scanning tag link: %w", err)
		}
		if r, ok := byID[recipeID]; ok {
			r.Tags = append(r.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tag links: %w", err)
	}

	return nil
}
