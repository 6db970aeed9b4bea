package service

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository/sqlite"
)

// fakeImageStore counts saves and returns a distinct URL per save, so tests
// can tell whether an update replaced the image.
type fakeImageStore struct {
	saves int
	fail  bool
}

func (f *fakeImageStore) Save(dataURI string) (string, error) {
	if f.fail {
		return "", errors.New("bad image payload")
	}
	f.saves++
	return fmt.Sprintf("/media/fake-%d.png", f.saves), nil
}

// testEnv wires every service against one in-memory database. Services get
// the same *DB through their narrow repository interfaces, exactly like the
// composition root does.
type testEnv struct {
	db       *sqlite.DB
	images   *fakeImageStore
	users    *UserService
	recipes  *RecipeService
	marks    *MarkService
	subs     *SubscriptionService
	shopping *ShoppingListService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	// Minimum bcrypt cost keeps the hashing in these tests fast.
	passwords := auth.NewPasswordServiceForTest(4)
	images := &fakeImageStore{}

	return &testEnv{
		db:       db,
		images:   images,
		users:    NewUserService(db, passwords, tokens, logger),
		recipes:  NewRecipeService(db, db, db, db, images, logger),
		marks:    NewMarkService(db, db, logger),
		subs:     NewSubscriptionService(db, db, db, logger),
		shopping: NewShoppingListService(db, logger),
	}
}

func (e *testEnv) registerUser(t *testing.T, email, username string) *model.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "swordfish123",
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return user
}

func (e *testEnv) seedIngredient(t *testing.T, name, unit string) *model.Ingredient {
	t.Helper()
	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := e.db.CreateIngredient(context.Background(), ing); err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	return ing
}

func (e *testEnv) seedTag(t *testing.T, name, color, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Color: color, Slug: slug}
	if err := e.db.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}
	return tag
}

// composeInput returns a valid recipe input over a freshly seeded
// ingredient and tag.
func (e *testEnv) composeInput(t *testing.T, name string) ComposeInput {
	t.Helper()
	ing := e.seedIngredient(t, "ing-"+name, "g")
	color := fmt.Sprintf("#%06X", crc32.ChecksumIEEE([]byte(name))&0xFFFFFF)
	tag := e.seedTag(t, "tag-"+name, color, "slug-"+name)
	return ComposeInput{
		Name:        name,
		Text:        "cook it well",
		CookingTime: 25,
		Image:       "data:image/png;base64,aGVsbG8=",
		Ingredients: []LineInput{{IngredientID: ing.ID, Amount: 100}},
		TagIDs:      []string{tag.ID},
	}
}
