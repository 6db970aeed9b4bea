package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodgramapp/foodgram/internal/repository"
)

// IngredientHandler serves the ingredient catalogue, read-only over HTTP.
type IngredientHandler struct {
	ingredients repository.IngredientRepository
}

func NewIngredientHandler(ingredients repository.IngredientRepository) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

// List handles GET /api/ingredients. ?name= narrows the catalogue to names
// starting with the given prefix, case-insensitively.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredients.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// Get handles GET /api/ingredients/{id}.
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	ingredient, err := h.ingredients.GetIngredientByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}
