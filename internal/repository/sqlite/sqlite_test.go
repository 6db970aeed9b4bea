package sqlite

import (
	"context"
	"fmt"
	"hash/crc32"
	"testing"

	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup
// closes it when the test (and its subtests) finish.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestTag(t *testing.T, db *DB, name, color, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Color: color, Slug: slug}
	if err := db.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *DB, name, unit string) *model.Ingredient {
	t.Helper()
	ingredient := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.CreateIngredient(context.Background(), ingredient); err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// createTestRecipe persists a recipe with a single generated ingredient and
// tag, returning it re-read so lines and tags are populated.
func createTestRecipe(t *testing.T, db *DB, authorID, name string) *model.Recipe {
	t.Helper()
	ingredient := createTestIngredient(t, db, "ing-for-"+name, "g")
	color := fmt.Sprintf("#%06X", crc32.ChecksumIEEE([]byte(name))&0xFFFFFF)
	tag := createTestTag(t, db, "tag-for-"+name, color, "slug-for-"+name)

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "/media/" + name + ".png",
		Text:        "some instructions",
		CookingTime: 30,
	}
	lines := []repository.IngredientLineInput{{IngredientID: ingredient.ID, Amount: 100}}
	if err := db.CreateRecipe(context.Background(), recipe, lines, []string{tag.ID}); err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}

	created, err := db.GetRecipeByID(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("failed to re-read test recipe: %v", err)
	}
	return created
}
