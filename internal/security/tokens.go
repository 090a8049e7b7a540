package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Each cause is distinguishable so the HTTP layer
// can branch on expiry while still rendering a uniform 401.
var (
	// ErrTokenMalformed is returned when a token is not a well-formed JWT
	// or its payload is not an object.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature is returned when the signature does not verify.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid is returned when the token's nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrClaimsMissing is returned when a verified token lacks required identity claims.
	ErrClaimsMissing = errors.New("token claims missing")
)

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// TokenCodec issues and verifies HS256 access tokens and generates opaque
// refresh tokens. Access tokens are stateless; refresh tokens carry no
// claims and are validated solely against the store.
type TokenCodec struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokenCodec returns a TokenCodec signing with the given shared secret.
func NewTokenCodec(secret string, accessTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL}
}

// IssueAccess issues a short-lived access JWT carrying the user's identity.
// Returns the signed token and its expiration time.
func (c *TokenCodec) IssueAccess(userID, email, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccess parses and validates an access token (signature, exp, nbf)
// and checks that the identity claims are present. The returned error is one
// of the kinds above; callers must treat any non-nil error as fail-closed.
func (c *TokenCodec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, ErrClaimsMissing
	}
	return claims, nil
}

// GenerateRefreshToken returns an opaque refresh token: 32 bytes from a
// cryptographically secure source, hex-encoded. Never derived from user data.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
