package model

import "time"

// Recipe cooking time bounds, in minutes.
const (
	MinCookingTime = 1
	MaxCookingTime = 300
)

// MinIngredientAmount is the smallest amount an ingredient line may carry.
const MinIngredientAmount = 1

// Recipe is the central entity. A recipe always carries at least one
// ingredient line and at least one tag — the composition service enforces
// this and writes recipe + lines + links in a single transaction, so readers
// never observe a recipe without ingredients.
//
// Image holds a URL reference (e.g. "/media/cv37rs3pp9olc6atsptg.png");
// the image bytes themselves live in the image store.
type Recipe struct {
	ID          string    `json:"id"           db:"id"`
	AuthorID    string    `json:"-"            db:"author_id"`
	Name        string    `json:"name"         db:"name"`
	Image       string    `json:"image"        db:"image"`
	Text        string    `json:"text"         db:"text"`
	CookingTime int       `json:"cooking_time" db:"cooking_time"`
	CreatedAt   time.Time `json:"-"            db:"created_at"`

	// Populated by the repository on reads; not columns of the recipes table.
	Ingredients []IngredientLine `json:"-" db:"-"`
	Tags        []Tag            `json:"-" db:"-"`
}

// IngredientLine is one row of a recipe's ingredient list: a catalogue
// ingredient plus the amount this recipe uses. A recipe may reference each
// ingredient at most once (UNIQUE(recipe_id, ingredient_id)).
type IngredientLine struct {
	Ingredient Ingredient `json:"ingredient"`
	Amount     int        `json:"amount"`
}

// ShoppingItem is one group of the aggregated shopping list: a distinct
// (name, unit) pair with amounts summed over every recipe in the cart.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}
