package repository

import (
	"context"
	"errors"
	"time"

	"worldforge/backend/internal/token/domain"
)

// ErrTokenNotFound is returned by FindByToken when no row matches.
var ErrTokenNotFound = errors.New("refresh token not found")

// Repository defines persistence for refresh tokens. Rows are owned
// exclusively by this layer; the session service never mutates them outside
// these operations.
type Repository interface {
	// Create persists a new refresh token row.
	Create(ctx context.Context, t *domain.RefreshToken) error
	// FindByToken returns the row for the opaque token value, or ErrTokenNotFound.
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	// FindByUserID returns all rows for the user, newest first.
	FindByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error)
	// IsValid reports whether the token exists, is not revoked, and has not
	// expired. Fail-closed: unknown tokens and store errors report false,
	// never an error.
	IsValid(ctx context.Context, token string) bool
	// Claim atomically revokes the token if it is currently valid and returns
	// the prior row. Returns (nil, nil) when the token is unknown, already
	// revoked, or expired, so exactly one of two racing claims can win.
	Claim(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error)
	// Revoke marks the token revoked. Idempotent: revoking an already-revoked
	// or unknown token is not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeAll marks every token owned by the user revoked. Idempotent.
	RevokeAll(ctx context.Context, userID string) error
	// DeleteOldestForUser keeps the keepCount newest rows for the user and
	// hard-deletes the rest.
	DeleteOldestForUser(ctx context.Context, userID string, keepCount int) error
	// DeleteExpired hard-deletes rows whose expiry has passed and returns the
	// number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
