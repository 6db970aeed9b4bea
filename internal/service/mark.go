package service

import (
	"context"
	"log/slog"

	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// MarkService toggles the favorite and shopping-cart relations. Both kinds
// share the same contract: marking an already-marked recipe is a conflict,
// unmarking an unmarked one is not-found. The uniqueness constraint in the
// store — not a pre-check — guards against concurrent double-submission.
type MarkService struct {
	marks   repository.MarkRepository
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

func NewMarkService(
	marks repository.MarkRepository,
	recipes repository.RecipeRepository,
	logger *slog.Logger,
) *MarkService {
	return &MarkService{
		marks:   marks,
		recipes: recipes,
		logger:  logger,
	}
}

// Mark flags a recipe for the user. The recipe must exist; a duplicate mark
// surfaces as a conflict straight from the insert.
func (s *MarkService) Mark(ctx context.Context, kind model.MarkKind, userID, recipeID string) (*model.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.marks.AddMark(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}

	s.logger.Info("recipe marked",
		slog.String("kind", string(kind)),
		slog.String("user", userID),
		slog.String("recipe", recipeID),
	)

	return recipe, nil
}

// Marked reports which of the given recipes the user has flagged with the
// given kind. An empty user ID means an anonymous viewer: nothing is marked.
func (s *MarkService) Marked(ctx context.Context, kind model.MarkKind, userID string, recipeIDs []string) (map[string]bool, error) {
	if userID == "" || len(recipeIDs) == 0 {
		return map[string]bool{}, nil
	}
	return s.marks.MarkedRecipes(ctx, kind, userID, recipeIDs)
}

// Unmark removes the flag; not-found if the recipe was never marked.
func (s *MarkService) Unmark(ctx context.Context, kind model.MarkKind, userID, recipeID string) error {
	if _, err := s.recipes.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}

	if err := s.marks.RemoveMark(ctx, kind, userID, recipeID); err != nil {
		return err
	}

	s.logger.Info("recipe unmarked",
		slog.String("kind", string(kind)),
		slog.String("user", userID),
		slog.String("recipe", recipeID),
	)
	return nil
}
