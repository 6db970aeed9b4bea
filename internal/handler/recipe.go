package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/service"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping-cart toggles
// and the shopping-list download.
type RecipeHandler struct {
	recipes  *service.RecipeService
	marks    *service.MarkService
	shopping *service.ShoppingListService
	users    *service.UserService
	pres     *Presenter
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	marks *service.MarkService,
	shopping *service.ShoppingListService,
	users *service.UserService,
	pres *Presenter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		marks:    marks,
		shopping: shopping,
		users:    users,
		pres:     pres,
	}
}

// recipeRequest is the write shape for create and update. Ingredients and
// tags are references; the composition rules (non-empty, no duplicates,
// amounts, bounds) live in the service, so the handler only decodes.
type recipeRequest struct {
	Ingredients []struct {
		ID     string `json:"id"`
		Amount int    `json:"amount"`
	} `json:"ingredients"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	Name        string   `json:"name"`
	Text        string   `json:"text"`
	CookingTime int      `json:"cooking_time"`
}

func (req *recipeRequest) toInput() service.ComposeInput {
	lines := make([]service.LineInput, 0, len(req.Ingredients))
	for _, l := range req.Ingredients {
		lines = append(lines, service.LineInput{IngredientID: l.ID, Amount: l.Amount})
	}
	return service.ComposeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Ingredients: lines,
		TagIDs:      req.Tags,
	}
}

// List handles GET /api/recipes with the tag, author, favorite and cart
// filters. The membership filters require a viewer; for anonymous requests
// they are ignored rather than erroring.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	limit, page := pageParams(r)

	q := r.URL.Query()
	filter := service.ListFilter{
		TagSlugs:  q["tags"],
		AuthorID:  q.Get("author"),
		Favorited: q.Get("is_favorited") == "1",
		InCart:    q.Get("is_in_shopping_cart") == "1",
		ViewerID:  viewerID,
	}

	recipes, total, err := h.recipes.List(r.Context(), filter, limit, page)
	if err != nil {
		writeError(w, err)
		return
	}

	authors, err := h.loadAuthors(r, recipes)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.pres.recipes(r.Context(), recipes, authors, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPaginated(r, total, effectiveLimit(limit), page, results))
}

// Get handles GET /api/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	recipe, err := h.recipes.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	author, err := h.users.GetByID(r.Context(), recipe.AuthorID)
	if err != nil {
		writeError(w, err)
		return
	}

	shaped, err := h.pres.recipe(r.Context(), recipe, author, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shaped)
}

// Create handles POST /api/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}

	recipe, err := h.recipes.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	author, err := h.users.GetByID(r.Context(), recipe.AuthorID)
	if err != nil {
		writeError(w, err)
		return
	}

	shaped, err := h.pres.recipe(r.Context(), recipe, author, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shaped)
}

// Update handles PATCH /api/recipes/{id}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}

	recipe, err := h.recipes.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	author, err := h.users.GetByID(r.Context(), recipe.AuthorID)
	if err != nil {
		writeError(w, err)
		return
	}

	shaped, err := h.pres.recipe(r.Context(), recipe, author, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shaped)
}

// Delete handles DELETE /api/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.recipes.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mark handles POST /api/recipes/{id}/favorite and .../shopping_cart.
func (h *RecipeHandler) Mark(kind model.MarkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, apperror.Unauthorized("authentication required"))
			return
		}

		recipe, err := h.marks.Mark(r.Context(), kind, userID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newRecipeShortResponse(recipe))
	}
}

// Unmark handles the DELETE side of the mark endpoints.
func (h *RecipeHandler) Unmark(kind model.MarkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, apperror.Unauthorized("authentication required"))
			return
		}

		if err := h.marks.Unmark(r.Context(), kind, userID, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart,
// returning the aggregated list as a plain-text attachment. An empty cart
// yields an empty file, not an error.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	items, err := h.shopping.Compute(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(service.RenderText(items))); err != nil {
		// Response already started; the client went away.
		return
	}
}

// loadAuthors fetches the distinct authors of a recipe page.
func (h *RecipeHandler) loadAuthors(r *http.Request, recipes []model.Recipe) (map[string]*model.User, error) {
	authors := make(map[string]*model.User)
	for i := range recipes {
		id := recipes[i].AuthorID
		if _, ok := authors[id]; ok {
			continue
		}
		author, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			return nil, err
		}
		authors[id] = author
	}
	return authors, nil
}
