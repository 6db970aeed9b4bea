package model

import "time"

// Subscription records that one user follows another's recipes.
// Uniqueness is on (subscriber_id, author_id); a user cannot subscribe to
// themselves (enforced in the service, not the schema).
type Subscription struct {
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	AuthorID     string    `json:"author_id"     db:"author_id"`
	CreatedAt    time.Time `json:"-"             db:"created_at"`
}

// MarkKind selects which user-recipe relation a mark operation targets.
// Favorites and the shopping cart share the same shape (user, recipe, unique
// together), so the repository and service are parametrized by kind instead
// of duplicating code per table.
type MarkKind string

const (
	MarkFavorite     MarkKind = "favorite"
	MarkShoppingCart MarkKind = "shopping_cart"
)
