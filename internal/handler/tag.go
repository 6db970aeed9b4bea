package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodgramapp/foodgram/internal/repository"
)

// TagHandler serves the tag catalogue. Tags are read-only over HTTP;
// they are created by the seeding tool.
type TagHandler struct {
	tags repository.TagRepository
}

func NewTagHandler(tags repository.TagRepository) *TagHandler {
	return &TagHandler{tags: tags}
}

// List handles GET /api/tags. The catalogue is small, so no pagination.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Get handles GET /api/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.GetTagByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}
