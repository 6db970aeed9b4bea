package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram/internal/apperror"
)

func TestSubscribe(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	author, err := env.subs.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, author.ID)

	subscribed, err := env.subs.IsSubscribed(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestSubscribe_ToSelf(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.subs.Subscribe(context.Background(), alice.ID, alice.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSubscribe_Twice(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	_, err := env.subs.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.subs.Subscribe(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSubscribe_UnknownAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.subs.Subscribe(context.Background(), alice.ID, "no-such-id")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")

	err := env.subs.Unsubscribe(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIsSubscribed_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	bob := env.registerUser(t, "bob@example.com", "bob")

	subscribed, err := env.subs.IsSubscribed(context.Background(), "", bob.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestListSubscriptions_RecipePreview(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		_, err := env.recipes.Create(ctx, bob.ID, env.composeInput(t, name))
		require.NoError(t, err)
	}

	_, err := env.subs.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	authors, total, err := env.subs.ListSubscriptions(ctx, alice.ID, 10, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, authors, 1)

	// Preview capped at recipes_limit, count reflects all of them.
	assert.Equal(t, bob.ID, authors[0].Author.ID)
	assert.Len(t, authors[0].Recipes, 2)
	assert.Equal(t, 3, authors[0].RecipesCount)
}
