// Package auth provides user accounts with bcrypt password hashing and
// HS256 JWT session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
)

// User is an account row. PasswordHash never leaves the package.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore is the persistence interface the service depends on.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// TokenResponse is returned by Login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Service implements registration, login, and token validation.
type Service struct {
	store     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewService creates the auth service. tokenTTL defaults to 24h when zero.
func NewService(store UserStore, jwtSecret string, tokenTTL time.Duration) (*Service, error) {
	if jwtSecret == "" {
		return nil, errors.New("auth: jwt secret must not be empty")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    slog.Default().With("component", "auth-service"),
	}, nil
}

// Register creates a new account. The password is bcrypt-hashed before
// storage.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login verifies credentials and issues a signed JWT.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		Issuer:    "tfidf-analyzer",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

// ValidateToken parses and verifies a JWT, returning the user ID it was
// issued for.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrUnauthorized
	}
	return claims.Subject, nil
}

// ChangePassword verifies the old password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the user. Their documents are owner-scoped and
// become unreachable; corpus contributions stay.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func validateCredentials(username, password string) error {
	if len(username) < 3 || len(username) > 64 {
		return fmt.Errorf("%w: username must be 3-64 characters", apperrors.ErrInvalidInput)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidInput)
	}
	return nil
}
