package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/service"
	"github.com/foodgramapp/foodgram/internal/validation"
)

// UserHandler serves account registration, profile reads and the
// subscription endpoints.
type UserHandler struct {
	users    *service.UserService
	subs     *service.SubscriptionService
	validate *validation.Validator
	pres     *Presenter
}

func NewUserHandler(
	users *service.UserService,
	subs *service.SubscriptionService,
	validate *validation.Validator,
	pres *Presenter,
) *UserHandler {
	return &UserHandler{
		users:    users,
		subs:     subs,
		validate: validate,
		pres:     pres,
	}
}

type registerRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Username  string `json:"username"   validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name"  validate:"required,max=150"`
	Password  string `json:"password"   validate:"required,min=8"`
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user, false))
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, page := pageParams(r)
	viewerID, _ := auth.UserIDFromContext(r.Context())

	users, total, err := h.users.List(r.Context(), limit, page)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]userResponse, 0, len(users))
	for i := range users {
		shaped, err := h.pres.user(r.Context(), &users[i], viewerID)
		if err != nil {
			writeError(w, err)
			return
		}
		results = append(results, shaped)
	}

	writeJSON(w, http.StatusOK, newPaginated(r, total, effectiveLimit(limit), page, results))
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	shaped, err := h.pres.user(r.Context(), user, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shaped)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, false))
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

// SetPassword handles POST /api/users/set_password.
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.SetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscribe handles POST /api/users/{id}/subscribe.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	author, err := h.subs.Subscribe(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(author, true))
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe.
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.subs.Unsubscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions handles GET /api/users/subscriptions. Each followed author
// comes with a recipe preview capped by ?recipes_limit=.
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	limit, page := pageParams(r)
	recipesLimit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("recipes_limit")); err == nil && v > 0 {
		recipesLimit = v
	}

	authors, total, err := h.subs.ListSubscriptions(r.Context(), userID, limit, page, recipesLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]subscriptionResponse, 0, len(authors))
	for _, a := range authors {
		previews := make([]recipeShortResponse, 0, len(a.Recipes))
		for i := range a.Recipes {
			previews = append(previews, newRecipeShortResponse(&a.Recipes[i]))
		}
		results = append(results, subscriptionResponse{
			userResponse: newUserResponse(&a.Author, true),
			Recipes:      previews,
			RecipesCount: a.RecipesCount,
		})
	}

	writeJSON(w, http.StatusOK, newPaginated(r, total, effectiveLimit(limit), page, results))
}

// effectiveLimit mirrors the service-side clamping so that pagination links
// are computed with the page size actually applied.
func effectiveLimit(limit int) int {
	if limit <= 0 {
		return service.DefaultPageSize
	}
	if limit > service.MaxPageSize {
		return service.MaxPageSize
	}
	return limit
}
