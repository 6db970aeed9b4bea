package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
)

func TestAddMark_Duplicate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	recipe := createTestRecipe(t, db, author.ID, "dish")

	ctx := context.Background()
	if err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, recipe.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, recipe.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestAddMark_KindsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	recipe := createTestRecipe(t, db, author.ID, "dish")

	ctx := context.Background()
	if err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, recipe.ID); err != nil {
		t.Fatalf("AddMark(favorite) error = %v", err)
	}
	// Same pair, other relation: not a duplicate.
	if err := db.AddMark(ctx, model.MarkShoppingCart, viewer.ID, recipe.ID); err != nil {
		t.Fatalf("AddMark(shopping_cart) error = %v", err)
	}
}

func TestRemoveMark_NotFound(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	recipe := createTestRecipe(t, db, author.ID, "dish")

	err := db.RemoveMark(context.Background(), model.MarkFavorite, viewer.ID, recipe.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMarkExists(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	recipe := createTestRecipe(t, db, author.ID, "dish")

	ctx := context.Background()
	exists, err := db.MarkExists(ctx, model.MarkShoppingCart, viewer.ID, recipe.ID)
	if err != nil {
		t.Fatalf("MarkExists() error = %v", err)
	}
	if exists {
		t.Error("mark should not exist yet")
	}

	if err := db.AddMark(ctx, model.MarkShoppingCart, viewer.ID, recipe.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	exists, err = db.MarkExists(ctx, model.MarkShoppingCart, viewer.ID, recipe.ID)
	if err != nil {
		t.Fatalf("MarkExists() error = %v", err)
	}
	if !exists {
		t.Error("mark should exist")
	}
}

func TestMarkedRecipes(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	marked := createTestRecipe(t, db, author.ID, "marked")
	unmarked := createTestRecipe(t, db, author.ID, "unmarked")

	ctx := context.Background()
	if err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, marked.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	result, err := db.MarkedRecipes(ctx, model.MarkFavorite, viewer.ID,
		[]string{marked.ID, unmarked.ID})
	if err != nil {
		t.Fatalf("MarkedRecipes() error = %v", err)
	}
	if !result[marked.ID] {
		t.Error("expected marked recipe in result")
	}
	if result[unmarked.ID] {
		t.Error("unmarked recipe reported as marked")
	}
}
