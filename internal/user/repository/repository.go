package repository

import (
	"context"
	"time"

	"worldforge/backend/internal/user/domain"
)

// Repository defines the user-lookup capability the auth core consumes.
// Implementations return (nil, nil) for missing users; errors signal
// database failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateLastLogin bumps last_login_at for the user. The auth core is the
	// only writer of this column.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
