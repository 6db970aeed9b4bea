package handler

import (
	"context"

	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/service"
)

// userResponse is the public shape of a user. IsSubscribed is relative to
// the viewer and false for anonymous requests.
type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func newUserResponse(u *model.User, isSubscribed bool) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// ingredientLineResponse flattens a recipe's ingredient line: catalogue
// fields plus the amount this recipe uses.
type ingredientLineResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// recipeResponse is the full read shape: tags and ingredient lines expanded,
// author embedded, viewer-relative flags resolved.
type recipeResponse struct {
	ID               string                   `json:"id"`
	Tags             []model.Tag              `json:"tags"`
	Author           userResponse             `json:"author"`
	Ingredients      []ingredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
}

// recipeShortResponse is the compact shape used by mark endpoints and
// subscription listings.
type recipeShortResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func newRecipeShortResponse(r *model.Recipe) recipeShortResponse {
	return recipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// subscriptionResponse is a followed author with a preview of their recipes.
type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// Presenter resolves viewer-relative fields (is_subscribed, is_favorited,
// is_in_shopping_cart) when shaping responses. Handlers share one instance.
type Presenter struct {
	marks *service.MarkService
	subs  *service.SubscriptionService
}

func NewPresenter(marks *service.MarkService, subs *service.SubscriptionService) *Presenter {
	return &Presenter{marks: marks, subs: subs}
}

// user shapes a single user for the given viewer.
func (p *Presenter) user(ctx context.Context, u *model.User, viewerID string) (userResponse, error) {
	subscribed, err := p.subs.IsSubscribed(ctx, viewerID, u.ID)
	if err != nil {
		return userResponse{}, err
	}
	return newUserResponse(u, subscribed), nil
}

// recipes shapes a page of recipes, batching the favorite and cart lookups
// into one query each instead of two per recipe.
func (p *Presenter) recipes(ctx context.Context, recipes []model.Recipe, authors map[string]*model.User, viewerID string) ([]recipeResponse, error) {
	ids := make([]string, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	favorited, err := p.marks.Marked(ctx, model.MarkFavorite, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := p.marks.Marked(ctx, model.MarkShoppingCart, viewerID, ids)
	if err != nil {
		return nil, err
	}

	subscribedTo := make(map[string]bool, len(authors))
	for authorID := range authors {
		subscribed, err := p.subs.IsSubscribed(ctx, viewerID, authorID)
		if err != nil {
			return nil, err
		}
		subscribedTo[authorID] = subscribed
	}

	out := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		author, ok := authors[r.AuthorID]
		if !ok {
			// FK guarantees the author row exists; a miss here is a bug in
			// the caller's author prefetch.
			continue
		}

		lines := make([]ingredientLineResponse, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			lines = append(lines, ingredientLineResponse{
				ID:              line.Ingredient.ID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}

		tags := r.Tags
		if tags == nil {
			tags = []model.Tag{}
		}

		out = append(out, recipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           newUserResponse(author, subscribedTo[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return out, nil
}

// recipe shapes a single recipe.
func (p *Presenter) recipe(ctx context.Context, r *model.Recipe, author *model.User, viewerID string) (recipeResponse, error) {
	shaped, err := p.recipes(ctx, []model.Recipe{*r}, map[string]*model.User{author.ID: author}, viewerID)
	if err != nil {
		return recipeResponse{}, err
	}
	return shaped[0], nil
}
