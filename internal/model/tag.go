package model

// Tag is a recipe label such as "breakfast" or "dinner".
// Name, Color and Slug are each unique across all tags.
// Color is a hex code like "#49B64E"; Slug is the URL-safe form used by the
// recipe tag filter.
type Tag struct {
	ID    string `json:"id"    db:"id"`
	Name  string `json:"name"  db:"name"`
	Color string `json:"color" db:"color"`
	Slug  string `json:"slug"  db:"slug"`
}
