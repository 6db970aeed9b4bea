package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/service"
	"github.com/foodgramapp/foodgram/internal/validation"
)

// AuthHandler issues and revokes session tokens. The token is returned in
// the body for API clients and also set as an HttpOnly cookie for browsers.
type AuthHandler struct {
	users    *service.UserService
	validate *validation.Validator
	tokenTTL time.Duration
}

func NewAuthHandler(users *service.UserService, validate *validation.Validator, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: validate,
		tokenTTL: tokenTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login handles POST /api/auth/token/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}

// Logout handles POST /api/auth/token/logout. Tokens are stateless, so
// logout just expires the cookie; clients drop their copy of the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
