// Package auth implements the session state machine: login, refresh with
// rotation, logout, and logout-all, plus the expired-token sweeper.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
	"worldforge/backend/internal/events"
	"worldforge/backend/internal/security"
	tokendomain "worldforge/backend/internal/token/domain"
	userdomain "worldforge/backend/internal/user/domain"
)

// Sentinel errors for the session service; the HTTP layer maps them to
// status codes. Credential and refresh-token failures carry deliberately
// generic messages regardless of the internal cause.
var (
	ErrInvalidCredentials  = apperrors.New(apperrors.KindAuthentication, "Invalid email or password")
	ErrInvalidRefreshToken = apperrors.New(apperrors.KindAuthentication, "Invalid or expired refresh token")
	ErrUserNotFound        = apperrors.New(apperrors.KindNotFound, "User not found")
)

// UserRepo is the minimal user capability needed by the session service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// TokenRepo is the minimal refresh-token store needed by the session service.
type TokenRepo interface {
	Create(ctx context.Context, t *tokendomain.RefreshToken) error
	Claim(ctx context.Context, token string, now time.Time) (*tokendomain.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*tokendomain.RefreshToken, error)
	FindByUserID(ctx context.Context, userID string) ([]*tokendomain.RefreshToken, error)
	IsValid(ctx context.Context, token string) bool
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
	DeleteOldestForUser(ctx context.Context, userID string, keepCount int) error
}

// ClientMeta carries per-request client details stored on refresh-token rows.
type ClientMeta struct {
	DeviceInfo string
	IPAddress  string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         userdomain.SafeUser
}

// RefreshResult is the outcome of a successful refresh: a new access token
// and the rotated refresh token.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// SessionInfo describes one live refresh-token session without exposing the
// token value.
type SessionInfo struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"deviceInfo,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Service orchestrates login, refresh, logout, and logout-all.
type Service struct {
	users      UserRepo
	tokens     TokenRepo
	hasher     *security.Hasher
	codec      *security.TokenCodec
	refreshTTL time.Duration
	maxTokens  int
	producer   events.Producer
	logger     *zap.Logger
	now        func() time.Time
}

// NewService returns a Service with the given dependencies. maxTokens is the
// per-user retention cap enforced after each login.
func NewService(
	users UserRepo,
	tokens TokenRepo,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	refreshTTL time.Duration,
	maxTokens int,
	producer events.Producer,
	logger *zap.Logger,
) *Service {
	if producer == nil {
		producer = events.NopProducer{}
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		codec:      codec,
		refreshTTL: refreshTTL,
		maxTokens:  maxTokens,
		producer:   producer,
		logger:     logger.Named("auth_service"),
		now:        time.Now,
	}
}

// Login verifies credentials, bumps last-login, issues an access/refresh
// token pair, and enforces the per-user retention cap. Unknown email and
// wrong password both fail with ErrInvalidCredentials so responses do not
// leak account existence.
func (s *Service) Login(ctx context.Context, email, password string, meta ClientMeta) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Login failed", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify([]byte(password), user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Login failed", err)
	}

	accessToken, _, err := s.codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Login failed", err)
	}
	refreshToken, err := s.issueRefreshToken(ctx, user.ID, now, meta)
	if err != nil {
		return nil, err
	}

	// Retention cap: the freshly issued token is the newest row, so it is
	// never among the deleted excess.
	if err := s.tokens.DeleteOldestForUser(ctx, user.ID, s.maxTokens); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Login failed", err)
	}

	s.emit(ctx, events.Event{
		Type:       events.TypeUserLoggedIn,
		UserID:     user.ID,
		IPAddress:  meta.IPAddress,
		DeviceInfo: meta.DeviceInfo,
		OccurredAt: now,
	})

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Safe(),
	}, nil
}

// Refresh rotates the presented refresh token: the token is atomically
// claimed (validated and revoked in one step, so a stolen token replays at
// most once), then a new access/refresh pair is issued for its owner.
func (s *Service) Refresh(ctx context.Context, presented string, meta ClientMeta) (*RefreshResult, error) {
	if presented == "" {
		return nil, ErrInvalidRefreshToken
	}
	// Fail-closed precheck before any lookup that could leak existence.
	if !s.tokens.IsValid(ctx, presented) {
		return nil, ErrInvalidRefreshToken
	}
	now := s.now().UTC()
	prior, err := s.tokens.Claim(ctx, presented, now)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Refresh failed", err)
	}
	if prior == nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, prior.UserID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Refresh failed", err)
	}
	if user == nil {
		// The owner was deleted between issuance and use.
		return nil, ErrUserNotFound
	}

	accessToken, _, err := s.codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Refresh failed", err)
	}
	refreshToken, err := s.issueRefreshToken(ctx, user.ID, now, meta)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Type:       events.TypeTokenRefreshed,
		UserID:     user.ID,
		IPAddress:  meta.IPAddress,
		DeviceInfo: meta.DeviceInfo,
		OccurredAt: now,
	})

	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes the given refresh token. An empty token is a no-op: a
// client that is already logged out logs out successfully again.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	// Best-effort owner lookup so the event names who logged out.
	var userID string
	if row, err := s.tokens.FindByToken(ctx, refreshToken); err == nil && row != nil {
		userID = row.UserID
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return apperrors.Wrap(apperrors.KindDatabase, "Logout failed", err)
	}
	s.emit(ctx, events.Event{
		Type:       events.TypeUserLoggedOut,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// LogoutAll revokes every refresh token owned by the user. Used for
// "log out of all devices" and credential-compromise response.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.KindDatabase, "Logout failed", err)
	}
	s.emit(ctx, events.Event{
		Type:       events.TypeUserLoggedOutAll,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// Sessions lists the user's live sessions, newest first. Revoked and
// expired rows are filtered out; token values never leave this package.
func (s *Service) Sessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	rows, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDatabase, "Failed to list sessions", err)
	}
	now := s.now().UTC()
	sessions := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		if !row.Valid(now) {
			continue
		}
		sessions = append(sessions, SessionInfo{
			ID:         row.ID,
			DeviceInfo: row.DeviceInfo,
			IPAddress:  row.IPAddress,
			CreatedAt:  row.CreatedAt,
			ExpiresAt:  row.ExpiresAt,
		})
	}
	return sessions, nil
}

func (s *Service) issueRefreshToken(ctx context.Context, userID string, now time.Time, meta ClientMeta) (string, error) {
	token, err := security.GenerateRefreshToken()
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "Failed to issue refresh token", err)
	}
	row := &tokendomain.RefreshToken{
		ID:         uuid.New().String(),
		Token:      token,
		UserID:     userID,
		ExpiresAt:  now.Add(s.refreshTTL),
		DeviceInfo: meta.DeviceInfo,
		IPAddress:  meta.IPAddress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", apperrors.Wrap(apperrors.KindDatabase, "Failed to issue refresh token", err)
	}
	return token, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.producer.Emit(ctx, event); err != nil {
		s.logger.Warn("auth event emit failed", zap.String("type", event.Type), zap.Error(err))
	}
}
