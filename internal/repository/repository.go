// Package repository declares the storage interfaces the service layer
// depends on. The SQLite implementation lives in repository/sqlite; tests
// may substitute mocks.
package repository

import (
	"context"

	"github.com/foodgramapp/foodgram/internal/model"
)

// ListOptions carries limit/offset pagination. The service layer clamps the
// values before they reach a repository.
type ListOptions struct {
	Limit  int
	Offset int
}

// RecipeFilter narrows a recipe listing. Zero values mean "no filtering" on
// that axis. TagSlugs use OR semantics: a recipe matches if it carries any
// of the given tags.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    string
	FavoritedBy string // only recipes favorited by this user
	InCartOf    string // only recipes in this user's shopping cart
}

// IngredientLineInput is one (ingredient, amount) pair of a recipe write.
type IngredientLineInput struct {
	IngredientID string
	Amount       int
}

type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.Conflict if the email
	// or username is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// ListUsers returns a page of users plus the total count.
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, int, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetUserAdmin grants or revokes the admin flag.
	SetUserAdmin(ctx context.Context, id string, isAdmin bool) error
}

type TagRepository interface {
	// CreateTag inserts a tag. Returns apperror.Conflict if name, color or
	// slug is already taken.
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByID(ctx context.Context, id string) (*model.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error)
	// ListTags returns all tags. The tag catalogue is small and unpaginated.
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type IngredientRepository interface {
	// CreateIngredient inserts an ingredient. Returns apperror.Conflict if
	// the (name, measurement_unit) pair already exists.
	CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error
	GetIngredientByID(ctx context.Context, id string) (*model.Ingredient, error)
	// GetIngredientsByIDs returns the ingredients for the given ids;
	// missing ids are simply absent from the result.
	GetIngredientsByIDs(ctx context.Context, ids []string) ([]model.Ingredient, error)
	// ListIngredients returns ingredients whose name starts with prefix
	// (all of them when prefix is empty), ordered by name. Unpaginated.
	ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	IngredientExists(ctx context.Context, name, measurementUnit string) (bool, error)
}

type RecipeRepository interface {
	// CreateRecipe persists the recipe row together with its ingredient
	// lines and tag links in one transaction. A failure leaves no rows
	// behind.
	CreateRecipe(ctx context.Context, recipe *model.Recipe, lines []IngredientLineInput, tagIDs []string) error
	// UpdateRecipe rewrites the recipe row and fully replaces its lines and
	// links (delete-all-then-recreate) in one transaction.
	UpdateRecipe(ctx context.Context, recipe *model.Recipe, lines []IngredientLineInput, tagIDs []string) error
	// GetRecipeByID returns the recipe with Ingredients and Tags populated.
	GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error)
	// ListRecipes returns a page of recipes matching the filter, newest
	// first, plus the total matching count. Ingredients and Tags are
	// populated.
	ListRecipes(ctx context.Context, filter RecipeFilter, opts ListOptions) ([]model.Recipe, int, error)
	// ListRecipesByAuthor returns up to limit of the author's recipes
	// (newest first; limit<=0 means all) and the author's total recipe
	// count.
	ListRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]model.Recipe, int, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// MarkRepository manages the favorite and shopping-cart user-recipe
// relations. Both share the same shape, so operations are parametrized by
// model.MarkKind instead of duplicating an interface per table.
type MarkRepository interface {
	// AddMark inserts a mark. The UNIQUE(user_id, recipe_id) constraint is
	// the sole guard against duplicates: a violating insert fails
	// atomically and is reported as apperror.Conflict.
	AddMark(ctx context.Context, kind model.MarkKind, userID, recipeID string) error
	// RemoveMark deletes a mark; apperror.NotFound when no mark exists.
	RemoveMark(ctx context.Context, kind model.MarkKind, userID, recipeID string) error
	MarkExists(ctx context.Context, kind model.MarkKind, userID, recipeID string) (bool, error)
	// MarkedRecipes reports which of the given recipes the user has marked.
	// Used to decorate listing pages without a query per recipe.
	MarkedRecipes(ctx context.Context, kind model.MarkKind, userID string, recipeIDs []string) (map[string]bool, error)
}

type SubscriptionRepository interface {
	// AddSubscription inserts a subscription; apperror.Conflict when it
	// already exists (guarded by UNIQUE(subscriber_id, author_id), not
	// check-then-insert).
	AddSubscription(ctx context.Context, subscriberID, authorID string) error
	// RemoveSubscription deletes a subscription; apperror.NotFound when
	// absent.
	RemoveSubscription(ctx context.Context, subscriberID, authorID string) error
	SubscriptionExists(ctx context.Context, subscriberID, authorID string) (bool, error)
	// ListSubscribedAuthors returns a page of the authors the subscriber
	// follows, oldest subscription first, plus the total count.
	ListSubscribedAuthors(ctx context.Context, subscriberID string, opts ListOptions) ([]model.User, int, error)
}

// ShoppingListRepository computes the aggregated purchase list.
type ShoppingListRepository interface {
	// AggregateShoppingList joins the user's cart recipes to their lines,
	// groups by (ingredient name, measurement unit) and sums the amounts.
	// Ordered by name, then unit. An empty cart yields an empty slice.
	AggregateShoppingList(ctx context.Context, userID string) ([]model.ShoppingItem, error)
}
