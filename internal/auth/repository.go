package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// PostgresStore persists users in the users table.
type PostgresStore struct {
	db *postgres.Client
}

// NewPostgresStore creates a PostgreSQL-backed user store.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	err := s.db.DB.QueryRowContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		user.ID, user.Username, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetByUsername returns ErrInvalidCredentials for unknown usernames so
// login failures do not reveal whether the account exists.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.db.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.ErrUnauthorized
	}
	return nil
}
