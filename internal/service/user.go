// Package service contains the business logic layer.
//
// Services accept primitives and small input structs, never HTTP types, and
// return domain errors from internal/apperror — the handler layer maps
// those to status codes. Each service receives the repository interfaces it
// needs (not the concrete sqlite.DB), so tests can run against the
// in-memory store or a mock.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/model"
	"github.com/foodgramapp/foodgram/internal/repository"
)

// Pagination bounds shared by all listing endpoints. The default matches
// the frontend's six-card grid.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// clampPage normalizes client-supplied pagination values.
func clampPage(limit, page int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}
}

// UserService handles registration, login and profile access.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterInput carries a registration request. Field formats are checked
// by the request validator before this reaches the service; the service
// owns normalization and the uniqueness rule (delegated to the store's
// constraints).
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if in.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and issues an access token.
//
// Both "no such email" and "wrong password" produce the same unauthorized
// message, so the endpoint doesn't reveal which emails are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperror.Unauthorized("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return token, nil
}

// GetByID returns a user profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// List returns a page of users plus the total count.
func (s *UserService) List(ctx context.Context, limit, page int) ([]model.User, int, error) {
	return s.users.ListUsers(ctx, clampPage(limit, page))
}

// SetPassword changes the caller's password after verifying the current one.
func (s *UserService) SetPassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
		return apperror.ValidationFailed("current_password", "current password is incorrect")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("new_password", "password must be 72 bytes or fewer")
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.String("id", userID))
	return nil
}
