package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func policyRouter(policy Policy, identity *Identity) *gin.Engine {
	r := gin.New()
	inject := func(c *gin.Context) {
		if identity != nil {
			c.Set(IdentityKey, *identity)
		}
		c.Next()
	}
	r.GET("/things/:thingId", inject, Authorize(policy, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthorize_Allows(t *testing.T) {
	var seen map[string]string
	policy := func(identity Identity, resource map[string]string) bool {
		seen = resource
		return identity.ID == "u1"
	}
	r := policyRouter(policy, &Identity{ID: "u1", Email: "ada@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", seen["thingId"])
}

func TestAuthorize_Denies(t *testing.T) {
	policy := func(Identity, map[string]string) bool { return false }
	r := policyRouter(policy, &Identity{ID: "u1"})

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")
}

func TestAuthorize_NoIdentity(t *testing.T) {
	policy := func(Identity, map[string]string) bool { return true }
	r := policyRouter(policy, nil)

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User not authenticated")
}

func TestAuthorize_PanicDenies(t *testing.T) {
	policy := func(Identity, map[string]string) bool { panic("boom") }
	r := policyRouter(policy, &Identity{ID: "u1"})

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHORIZATION_CHECK_FAILED")
}

func TestHasRole(t *testing.T) {
	policy := HasRole("admin", "moderator")

	assert.True(t, policy(Identity{Role: "admin"}, nil))
	assert.True(t, policy(Identity{Role: "moderator"}, nil))
	assert.False(t, policy(Identity{Role: "user"}, nil))
	assert.False(t, policy(Identity{}, nil))
}
