package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
	"worldforge/backend/internal/httpapi/respond"
)

// Policy decides whether an authenticated caller may proceed. resource
// carries request facts (route params) the policy may inspect.
type Policy func(identity Identity, resource map[string]string) bool

// Authorize runs the policy against the identity set by RequireAuth. A
// request with no identity is rejected as unauthenticated; a policy panic is
// a 500, never an allow.
func Authorize(policy Policy, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			unauthorized(c, "User not authenticated")
			return
		}

		resource := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			resource[p.Key] = p.Value
		}

		allowed, err := runPolicy(policy, identity, resource)
		if err != nil {
			logger.Error("authorization policy panicked",
				zap.String("path", c.Request.URL.Path),
				zap.String("userId", identity.ID),
				zap.Any("panic", err),
			)
			respond.ErrorWith(c, http.StatusInternalServerError,
				"AUTHORIZATION_CHECK_FAILED", "An unexpected error occurred",
				string(apperrors.KindInternal))
			return
		}
		if !allowed {
			respond.ErrorWith(c, http.StatusForbidden,
				"AUTHORIZATION_ERROR", "Access denied", string(apperrors.KindAuthorization))
			return
		}
		c.Next()
	}
}

// HasRole is a Policy allowing callers whose role is one of roles.
func HasRole(roles ...string) Policy {
	return func(identity Identity, _ map[string]string) bool {
		for _, r := range roles {
			if identity.Role == r {
				return true
			}
		}
		return false
	}
}

func runPolicy(policy Policy, identity Identity, resource map[string]string) (allowed bool, panicked any) {
	defer func() {
		if r := recover(); r != nil {
			allowed = false
			panicked = r
		}
	}()
	return policy(identity, resource), nil
}
