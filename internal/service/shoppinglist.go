package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// ShoppingListService computes the merged purchase list for a user's cart.
type ShoppingListService struct {
	list   repository.ShoppingListRepository
	logger *slog.Logger
}

func NewShoppingListService(list repository.ShoppingListRepository, logger *slog.Logger) *ShoppingListService {
	return &ShoppingListService{list: list, logger: logger}
}

// Compute gathers every recipe in the user's cart, groups the ingredient
// lines by (name, measurement unit) and sums the amounts. An empty cart
// yields an empty list, not an error.
func (s *ShoppingListService) Compute(ctx context.Context, userID string) ([]model.ShoppingItem, error) {
	items, err := s.list.AggregateShoppingList(ctx, userID)
	if err != nil {
		s.logger.Error("failed to aggregate shopping list",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("aggregating shopping list: %w", err)
	}

	s.logger.Info("shopping list computed",
		slog.String("user", userID),
		slog.Int("groups", len(items)),
	)

	return items, nil
}

// RenderText renders the aggregated list as the downloadable plain-text
// payload, one "{name} ({unit}) - {total}" line per group.
func RenderText(items []model.ShoppingItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String()
}
