package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"worldforge/backend/internal/token/domain"
)

// ErrDuplicateToken is returned by Create when the token value collides with
// an existing row. With 256-bit random tokens this indicates a caller bug.
var ErrDuplicateToken = errors.New("refresh token already exists")

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a refresh-token repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const tokenColumns = `id, token, user_id, expires_at, is_revoked, device_info, ip_address, created_at, updated_at`

// Create persists the refresh token row. The token must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, is_revoked, device_info, ip_address)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
	`
	// created_at and updated_at have DB defaults.
	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Token, t.UserID, t.ExpiresAt, t.IsRevoked, t.DeviceInfo, t.IPAddress,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on token
			return ErrDuplicateToken
		}
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindByToken returns the row for the opaque token value, or ErrTokenNotFound.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE token = $1`
	t, err := scanToken(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return t, nil
}

// FindByUserID returns all rows for the user, newest first.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("find refresh tokens by user: %w", err)
	}
	defer rows.Close()

	var out []*domain.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refresh token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find refresh tokens by user: %w", err)
	}
	return out, nil
}

// IsValid reports whether the token exists, is not revoked, and has not
// expired. Unknown tokens and store errors report false.
func (r *PostgresRepository) IsValid(ctx context.Context, token string) bool {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token = $1 AND NOT is_revoked AND expires_at >= NOW()
		)
	`
	var valid bool
	if err := r.pool.QueryRow(ctx, query, token).Scan(&valid); err != nil {
		return false
	}
	return valid
}

// Claim atomically revokes the token if it is still valid at now and returns
// the prior row. The conditional update serializes racing refreshes on the
// same token: the second caller matches zero rows and gets (nil, nil).
func (r *PostgresRepository) Claim(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error) {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, updated_at = $2
		WHERE token = $1 AND NOT is_revoked AND expires_at >= $2
		RETURNING ` + tokenColumns
	t, err := scanToken(r.pool.QueryRow(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim refresh token: %w", err)
	}
	// The RETURNING clause reflects the post-update row; report the prior state.
	t.IsRevoked = false
	return t, nil
}

// Revoke marks the token revoked. Revoking an already-revoked or unknown
// token is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW() WHERE token = $1`
	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll marks every token owned by the user revoked.
func (r *PostgresRepository) RevokeAll(ctx context.Context, userID string) error {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return nil
}

// DeleteOldestForUser keeps the keepCount newest rows for the user and
// hard-deletes the rest.
func (r *PostgresRepository) DeleteOldestForUser(ctx context.Context, userID string, keepCount int) error {
	if keepCount < 0 {
		keepCount = 0
	}
	query := `
		DELETE FROM refresh_tokens
		WHERE id IN (
			SELECT id FROM refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at DESC
			OFFSET $2
		)
	`
	if _, err := r.pool.Exec(ctx, query, userID, keepCount); err != nil {
		return fmt.Errorf("delete oldest refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired hard-deletes rows whose expiry has passed and returns the
// number of rows removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < NOW()`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*domain.RefreshToken, error) {
	var (
		t          domain.RefreshToken
		deviceInfo *string
		ipAddress  *string
	)
	err := row.Scan(
		&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.IsRevoked,
		&deviceInfo, &ipAddress, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deviceInfo != nil {
		t.DeviceInfo = *deviceInfo
	}
	if ipAddress != nil {
		t.IPAddress = *ipAddress
	}
	return &t, nil
}

var _ Repository = (*PostgresRepository)(nil)
