package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

const MaxRecipeNameLength = 255

// ImageStore persists an inline-encoded image payload and returns a
// retrievable URL reference. The file-backed implementation lives in
// internal/imagestore.
type ImageStore interface {
	Save(dataURI string) (string, error)
}

// RecipeService implements recipe composition: a recipe is only ever
// written together with its full set of ingredient lines and tag links, in
// one transaction.
type RecipeService struct {
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	users       repository.UserRepository
	images      ImageStore
	logger      *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	images ImageStore,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		ingredients: ingredients,
		tags:        tags,
		users:       users,
		images:      images,
		logger:      logger,
	}
}

// LineInput is one requested ingredient line of a recipe write.
type LineInput struct {
	IngredientID string
	Amount       int
}

// ComposeInput carries a recipe create or update request.
type ComposeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string // base64 data URI; empty on update keeps the current image
	Ingredients []LineInput
	TagIDs      []string
}

// validate enforces the composition rules before anything is written:
// lines non-empty, no duplicate ingredient, amounts >= 1, every referenced
// ingredient exists, tags non-empty without duplicates, name present,
// cooking time in bounds. Returns the repository-shaped line inputs.
func (s *RecipeService) validate(ctx context.Context, in *ComposeInput) ([]repository.IngredientLineInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "recipe name is required")
	}
	if len(in.Name) > MaxRecipeNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("recipe name must be %d characters or less", MaxRecipeNameLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperror.ValidationFailed("text", "recipe text is required")
	}
	if in.CookingTime < model.MinCookingTime || in.CookingTime > model.MaxCookingTime {
		return nil, apperror.ValidationFailed("cooking_time",
			fmt.Sprintf("cooking time must be between %d and %d minutes",
				model.MinCookingTime, model.MaxCookingTime))
	}

	if len(in.Ingredients) == 0 {
		return nil, apperror.ValidationFailed("ingredients", "at least one ingredient is required")
	}
	seen := make(map[string]bool, len(in.Ingredients))
	lines := make([]repository.IngredientLineInput, 0, len(in.Ingredients))
	ids := make([]string, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line.IngredientID == "" {
			return nil, apperror.ValidationFailed("ingredients", "ingredient id is required")
		}
		if seen[line.IngredientID] {
			return nil, apperror.ValidationFailed("ingredients",
				fmt.Sprintf("duplicate ingredient %s", line.IngredientID))
		}
		seen[line.IngredientID] = true
		if line.Amount < model.MinIngredientAmount {
			return nil, apperror.ValidationFailed("ingredients",
				fmt.Sprintf("amount must be at least %d", model.MinIngredientAmount))
		}
		lines = append(lines, repository.IngredientLineInput{
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
		ids = append(ids, line.IngredientID)
	}

	found, err := s.ingredients.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up ingredients: %w", err)
	}
	if len(found) != len(ids) {
		exists := make(map[string]bool, len(found))
		for _, ing := range found {
			exists[ing.ID] = true
		}
		for _, id := range ids {
			if !exists[id] {
				return nil, apperror.ValidationFailed("ingredients",
					fmt.Sprintf("ingredient %s does not exist", id))
			}
		}
	}

	if len(in.TagIDs) == 0 {
		return nil, apperror.ValidationFailed("tags", "at least one tag is required")
	}
	seenTags := make(map[string]bool, len(in.TagIDs))
	for _, tagID := range in.TagIDs {
		if seenTags[tagID] {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("duplicate tag %s", tagID))
		}
		seenTags[tagID] = true
		if _, err := s.tags.GetTagByID(ctx, tagID); err != nil {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tag %s does not exist", tagID))
		}
	}

	return lines, nil
}

// Create validates and atomically persists a new recipe.
func (s *RecipeService) Create(ctx context.Context, authorID string, in ComposeInput) (*model.Recipe, error) {
	lines, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	if in.Image == "" {
		return nil, apperror.ValidationFailed("image", "image is required")
	}
	imageURL, err := s.images.Save(in.Image)
	if err != nil {
		return nil, apperror.ValidationFailed("image", "image must be a base64 data URI")
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Image:       imageURL,
		Text:        strings.TrimSpace(in.Text),
		CookingTime: in.CookingTime,
	}

	if err := s.recipes.CreateRecipe(ctx, recipe, lines, in.TagIDs); err != nil {
		s.logger.Error("failed to create recipe",
			slog.String("author", authorID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("recipe created",
		slog.String("id", recipe.ID),
		slog.String("author", authorID),
	)

	return s.recipes.GetRecipeByID(ctx, recipe.ID)
}

// Update validates and atomically rewrites an existing recipe; the prior
// ingredient-line and tag-link sets are fully replaced. Only the author or
// an admin may update.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID string, in ComposeInput) (*model.Recipe, error) {
	existing, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actorID, existing.AuthorID); err != nil {
		return nil, err
	}

	lines, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	image := existing.Image
	if in.Image != "" {
		image, err = s.images.Save(in.Image)
		if err != nil {
			return nil, apperror.ValidationFailed("image", "image must be a base64 data URI")
		}
	}

	recipe := &model.Recipe{
		ID:          recipeID,
		AuthorID:    existing.AuthorID,
		Name:        in.Name,
		Image:       image,
		Text:        strings.TrimSpace(in.Text),
		CookingTime: in.CookingTime,
	}

	if err := s.recipes.UpdateRecipe(ctx, recipe, lines, in.TagIDs); err != nil {
		s.logger.Error("failed to update recipe",
			slog.String("id", recipeID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("recipe updated", slog.String("id", recipeID))

	return s.recipes.GetRecipeByID(ctx, recipeID)
}

// GetByID returns a recipe with lines and tags populated.
func (s *RecipeService) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	return s.recipes.GetRecipeByID(ctx, id)
}

// ListFilter is the service-level recipe filter. ViewerID is the
// authenticated user, or empty for anonymous requests — in that case the
// Favorited/InCart membership filters are no-ops rather than errors.
type ListFilter struct {
	TagSlugs  []string
	AuthorID  string
	Favorited bool
	InCart    bool
	ViewerID  string
}

// List returns a page of recipes matching the filter plus the total count.
func (s *RecipeService) List(ctx context.Context, filter ListFilter, limit, page int) ([]model.Recipe, int, error) {
	repoFilter := repository.RecipeFilter{
		TagSlugs: filter.TagSlugs,
		AuthorID: filter.AuthorID,
	}
	if filter.ViewerID != "" {
		if filter.Favorited {
			repoFilter.FavoritedBy = filter.ViewerID
		}
		if filter.InCart {
			repoFilter.InCartOf = filter.ViewerID
		}
	}

	return s.recipes.ListRecipes(ctx, repoFilter, clampPage(limit, page))
}

// Delete removes a recipe (owner or admin only); lines, links and marks
// cascade.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID string) error {
	existing, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, actorID, existing.AuthorID); err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	s.logger.Info("recipe deleted",
		slog.String("id", recipeID),
		slog.String("actor", actorID),
	)
	return nil
}

// authorize enforces the owner-or-admin mutation rule.
func (s *RecipeService) authorize(ctx context.Context, actorID, authorID string) error {
	if actorID == authorID {
		return nil
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return apperror.Forbidden("you can only modify your own recipes")
	}
	return nil
}
