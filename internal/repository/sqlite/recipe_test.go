package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

func TestCreateRecipe_PopulatesLinesAndTags(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")

	recipe := createTestRecipe(t, db, author.ID, "pancakes")

	if recipe.ID == "" {
		t.Fatal("recipe has no ID")
	}
	if len(recipe.Ingredients) != 1 {
		t.Errorf("len(Ingredients) = %d, want 1", len(recipe.Ingredients))
	}
	if len(recipe.Tags) != 1 {
		t.Errorf("len(Tags) = %d, want 1", len(recipe.Tags))
	}
	if recipe.Ingredients[0].Amount != 100 {
		t.Errorf("Amount = %d, want 100", recipe.Ingredients[0].Amount)
	}
}

func TestCreateRecipe_UnknownIngredientRollsBack(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	tag := createTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	recipe := &model.Recipe{
		AuthorID:    author.ID,
		Name:        "broken",
		Image:       "/media/broken.png",
		Text:        "text",
		CookingTime: 10,
	}
	lines := []repository.IngredientLineInput{{IngredientID: "no-such-ingredient", Amount: 5}}

	err := db.CreateRecipe(context.Background(), recipe, lines, []string{tag.ID})
	if err == nil {
		t.Fatal("CreateRecipe() should fail on unknown ingredient id")
	}

	// The transaction must roll back the recipe row too.
	_, err = db.GetRecipeByID(context.Background(), recipe.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("recipe row survived a failed composition: %v", err)
	}
}

func TestUpdateRecipe_ReplacesLines(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	recipe := createTestRecipe(t, db, author.ID, "soup")

	newIng := createTestIngredient(t, db, "carrot", "g")
	newTag := createTestTag(t, db, "Lunch", "#49B64E", "lunch")

	updated := &model.Recipe{
		ID:          recipe.ID,
		AuthorID:    author.ID,
		Name:        "carrot soup",
		Image:       recipe.Image,
		Text:        "new text",
		CookingTime: 45,
	}
	lines := []repository.IngredientLineInput{{IngredientID: newIng.ID, Amount: 250}}

	if err := db.UpdateRecipe(context.Background(), updated, lines, []string{newTag.ID}); err != nil {
		t.Fatalf("UpdateRecipe() error = %v", err)
	}

	found, err := db.GetRecipeByID(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID() error = %v", err)
	}
	if found.Name != "carrot soup" {
		t.Errorf("Name = %q, want %q", found.Name, "carrot soup")
	}
	if len(found.Ingredients) != 1 || found.Ingredients[0].Ingredient.ID != newIng.ID {
		t.Errorf("old ingredient lines were not replaced: %+v", found.Ingredients)
	}
	if len(found.Tags) != 1 || found.Tags[0].ID != newTag.ID {
		t.Errorf("old tag links were not replaced: %+v", found.Tags)
	}
}

func TestUpdateRecipe_NotFound(t *testing.T) {
	db := newTestDB(t)
	ing := createTestIngredient(t, db, "salt", "g")
	tag := createTestTag(t, db, "Dinner", "#8775D2", "dinner")

	recipe := &model.Recipe{ID: "no-such-id", Name: "x", Image: "y", Text: "z", CookingTime: 1}
	err := db.UpdateRecipe(context.Background(), recipe,
		[]repository.IngredientLineInput{{IngredientID: ing.ID, Amount: 1}},
		[]string{tag.ID})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListRecipes_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	createTestRecipe(t, db, author.ID, "older")
	newer := createTestRecipe(t, db, author.ID, "newer")

	recipes, total, err := db.ListRecipes(context.Background(),
		repository.RecipeFilter{}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(recipes) != 2 || recipes[0].ID != newer.ID {
		t.Errorf("expected newest recipe first, got %+v", recipes)
	}
}

func TestListRecipes_FilterByTagSlugs(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	breakfast := createTestRecipe(t, db, author.ID, "omelette")
	createTestRecipe(t, db, author.ID, "steak")

	recipes, total, err := db.ListRecipes(context.Background(),
		repository.RecipeFilter{TagSlugs: []string{"slug-for-omelette", "no-such-slug"}},
		repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(recipes) != 1 || recipes[0].ID != breakfast.ID {
		t.Errorf("unexpected result: %+v", recipes)
	}
}

func TestListRecipes_TagFanOutIsDeduplicated(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	recipe := createTestRecipe(t, db, author.ID, "salad")

	// Attach a second tag so the join produces two rows for one recipe.
	extra := createTestTag(t, db, "Vegan", "#00FF7F", "vegan")
	lines := make([]repository.IngredientLineInput, 0, len(recipe.Ingredients))
	for _, l := range recipe.Ingredients {
		lines = append(lines, repository.IngredientLineInput{IngredientID: l.Ingredient.ID, Amount: l.Amount})
	}
	if err := db.UpdateRecipe(context.Background(), recipe, lines,
		[]string{recipe.Tags[0].ID, extra.ID}); err != nil {
		t.Fatalf("UpdateRecipe() error = %v", err)
	}

	recipes, total, err := db.ListRecipes(context.Background(),
		repository.RecipeFilter{TagSlugs: []string{"slug-for-salad", "vegan"}},
		repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(recipes) != 1 {
		t.Errorf("len(recipes) = %d, want 1", len(recipes))
	}
}

func TestListRecipes_FilterByAuthor(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com", "alice")
	bob := createTestUser(t, db, "bob@example.com", "bob")
	createTestRecipe(t, db, alice.ID, "alice-dish")
	bobsDish := createTestRecipe(t, db, bob.ID, "bob-dish")

	recipes, total, err := db.ListRecipes(context.Background(),
		repository.RecipeFilter{AuthorID: bob.ID}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if total != 1 || len(recipes) != 1 || recipes[0].ID != bobsDish.ID {
		t.Errorf("unexpected result: total=%d recipes=%+v", total, recipes)
	}
}

func TestListRecipes_FilterByMarks(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	liked := createTestRecipe(t, db, author.ID, "liked")
	inCart := createTestRecipe(t, db, author.ID, "carted")
	createTestRecipe(t, db, author.ID, "plain")

	ctx := context.Background()
	if err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, liked.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}
	if err := db.AddMark(ctx, model.MarkShoppingCart, viewer.ID, inCart.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	favs, total, err := db.ListRecipes(ctx,
		repository.RecipeFilter{FavoritedBy: viewer.ID}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes(favorited) error = %v", err)
	}
	if total != 1 || len(favs) != 1 || favs[0].ID != liked.ID {
		t.Errorf("favorited filter: total=%d recipes=%+v", total, favs)
	}

	carted, total, err := db.ListRecipes(ctx,
		repository.RecipeFilter{InCartOf: viewer.ID}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecipes(in cart) error = %v", err)
	}
	if total != 1 || len(carted) != 1 || carted[0].ID != inCart.ID {
		t.Errorf("cart filter: total=%d recipes=%+v", total, carted)
	}
}

func TestListRecipesByAuthor_Limit(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	createTestRecipe(t, db, author.ID, "one")
	createTestRecipe(t, db, author.ID, "two")
	createTestRecipe(t, db, author.ID, "three")

	recipes, total, err := db.ListRecipesByAuthor(context.Background(), author.ID, 2)
	if err != nil {
		t.Fatalf("ListRecipesByAuthor() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(recipes) != 2 {
		t.Errorf("len(recipes) = %d, want 2", len(recipes))
	}
}

func TestDeleteRecipe_Cascades(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "cook@example.com", "cook")
	viewer := createTestUser(t, db, "viewer@example.com", "viewer")
	recipe := createTestRecipe(t, db, author.ID, "doomed")

	ctx := context.Background()
	if err := db.AddMark(ctx, model.MarkFavorite, viewer.ID, recipe.ID); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	if err := db.DeleteRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("DeleteRecipe() error = %v", err)
	}

	_, err := db.GetRecipeByID(ctx, recipe.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("recipe still readable after delete: %v", err)
	}

	// The favorite mark must be gone with the recipe.
	marked, err := db.MarkedRecipes(ctx, model.MarkFavorite, viewer.ID, []string{recipe.ID})
	if err != nil {
		t.Fatalf("MarkedRecipes() error = %v", err)
	}
	if marked[recipe.ID] {
		t.Error("favorite mark survived recipe deletion")
	}
}

func TestDeleteRecipe_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteRecipe(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
