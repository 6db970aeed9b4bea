package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("name", "required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("nope"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("recipe", "x"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("already there"), http.StatusConflict, "conflict"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantType, resp.Error)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("password for root is hunter2"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotContains(t, resp.Message, "hunter2")
}

func TestPageParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/recipes?page=3&limit=12", nil)
	limit, page := pageParams(r)
	assert.Equal(t, 12, limit)
	assert.Equal(t, 3, page)
}

func TestPageParams_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/recipes?page=junk&limit=-5", nil)
	limit, page := pageParams(r)
	assert.Equal(t, 0, limit)
	assert.Equal(t, 1, page)
}

func TestNewPaginated_Links(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/recipes?page=2&limit=6&tags=breakfast", nil)

	p := newPaginated(r, 20, 6, 2, []string{})

	require.NotNil(t, p.Next)
	require.NotNil(t, p.Previous)

	next, err := http.NewRequest(http.MethodGet, *p.Next, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", next.URL.Query().Get("page"))
	// The rest of the query string survives.
	assert.Equal(t, "breakfast", next.URL.Query().Get("tags"))

	prev, err := http.NewRequest(http.MethodGet, *p.Previous, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", prev.URL.Query().Get("page"))
}

func TestNewPaginated_EdgePages(t *testing.T) {
	first := httptest.NewRequest(http.MethodGet, "/api/recipes?page=1&limit=6", nil)
	p := newPaginated(first, 10, 6, 1, []string{})
	assert.Nil(t, p.Previous)
	assert.NotNil(t, p.Next)

	last := httptest.NewRequest(http.MethodGet, "/api/recipes?page=2&limit=6", nil)
	p = newPaginated(last, 10, 6, 2, []string{})
	assert.NotNil(t, p.Previous)
	assert.Nil(t, p.Next)

	only := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	p = newPaginated(only, 3, 6, 1, []string{})
	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Next)
}
