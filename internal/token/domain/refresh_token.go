package domain

import "time"

// RefreshToken is a persisted, revocable credential used solely to mint new
// access tokens. The Token column is an opaque random string; it is never
// decoded and never derived from user data.
type RefreshToken struct {
	ID         string
	Token      string
	UserID     string
	ExpiresAt  time.Time
	IsRevoked  bool
	DeviceInfo string // empty when the client sent no User-Agent
	IPAddress  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Valid reports whether the token can still mint access tokens at the given
// instant: not revoked and not past its expiry.
func (t *RefreshToken) Valid(now time.Time) bool {
	return !t.IsRevoked && !t.ExpiresAt.Before(now)
}
