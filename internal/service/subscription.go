package service

import (
	"context"
	"log/slog"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	subs    repository.SubscriptionRepository
	users   repository.UserRepository
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subs:    subs,
		users:   users,
		recipes: recipes,
		logger:  logger,
	}
}

// Subscribe makes subscriberID follow authorID. Self-subscription always
// fails regardless of prior state; a duplicate subscription fails on the
// store's uniqueness constraint.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID string) (*model.User, error) {
	if subscriberID == authorID {
		return nil, apperror.Conflict("you cannot subscribe to yourself")
	}

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.subs.AddSubscription(ctx, subscriberID, authorID); err != nil {
		return nil, err
	}

	s.logger.Info("subscribed",
		slog.String("subscriber", subscriberID),
		slog.String("author", authorID),
	)

	return author, nil
}

// Unsubscribe removes the subscription; not-found if it never existed.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return err
	}

	if err := s.subs.RemoveSubscription(ctx, subscriberID, authorID); err != nil {
		return err
	}

	s.logger.Info("unsubscribed",
		slog.String("subscriber", subscriberID),
		slog.String("author", authorID),
	)
	return nil
}

// IsSubscribed reports whether subscriberID follows authorID. Anonymous
// viewers (empty subscriberID) are never subscribed.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, subscriberID, authorID string) (bool, error) {
	if subscriberID == "" {
		return false, nil
	}
	return s.subs.SubscriptionExists(ctx, subscriberID, authorID)
}

// SubscribedAuthor is one entry of the subscriptions listing: the followed
// author, a preview of their recipes (optionally capped), and their total
// recipe count.
type SubscribedAuthor struct {
	Author       model.User
	Recipes      []model.Recipe
	RecipesCount int
}

// ListSubscriptions returns a page of the authors the subscriber follows,
// each annotated with up to recipesLimit of their recipes (<= 0 for all)
// and the author's total recipe count.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID string, limit, page, recipesLimit int) ([]SubscribedAuthor, int, error) {
	authors, total, err := s.subs.ListSubscribedAuthors(ctx, subscriberID, clampPage(limit, page))
	if err != nil {
		return nil, 0, err
	}

	result := make([]SubscribedAuthor, 0, len(authors))
	for _, author := range authors {
		recipes, count, err := s.recipes.ListRecipesByAuthor(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, SubscribedAuthor{
			Author:       author,
			Recipes:      recipes,
			RecipesCount: count,
		})
	}

	return result, total, nil
}
