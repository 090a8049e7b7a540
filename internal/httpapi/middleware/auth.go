// Package middleware holds the gin middleware for the HTTP surface: the
// auth gate, the policy gate, the token-refresh interceptor, request
// logging, and panic recovery.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
	"worldforge/backend/internal/httpapi/respond"
	"worldforge/backend/internal/security"
)

// IdentityKey is the gin context key the auth gate stores the caller's
// identity under.
const IdentityKey = "identity"

// Messages rendered on authentication failures.
const (
	MsgTokenRequired  = "Authentication token required"
	MsgTokenInvalid   = "Invalid or expired token"
	MsgTokenExpired   = "Token has expired"
	MsgTokenNotActive = "Token not active yet"
)

const bearerPrefix = "Bearer "

// Identity is the authenticated caller as seen by handlers and policies.
// Raw claims and the token itself never enter the request context.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IdentityFrom returns the identity set by RequireAuth, or false when the
// request did not pass the auth gate.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireAuth verifies the Bearer access token and stores the caller's
// identity in the context. Missing scheme, wrong scheme, and empty token all
// render the same required-token 401; verification failures render a 401
// whose message distinguishes expiry so clients (and the refresh
// interceptor) can react.
func RequireAuth(codec *security.TokenCodec, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c, MsgTokenRequired)
			return
		}
		tokenString := header[len(bearerPrefix):]
		if tokenString == "" {
			unauthorized(c, MsgTokenRequired)
			return
		}

		claims, err := codec.VerifyAccess(tokenString)
		if err != nil {
			logger.Warn("access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				unauthorized(c, MsgTokenExpired)
			case errors.Is(err, security.ErrTokenNotYetValid):
				unauthorized(c, MsgTokenNotActive)
			default:
				unauthorized(c, MsgTokenInvalid)
			}
			return
		}

		c.Set(IdentityKey, Identity{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	respond.ErrorWith(c, http.StatusUnauthorized,
		"AUTHENTICATION_ERROR", message, string(apperrors.KindAuthentication))
}
