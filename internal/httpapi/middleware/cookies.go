package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RefreshCookieName is the HTTP-only cookie carrying the refresh token.
// The token never appears in a response body.
const RefreshCookieName = "refreshToken"

// RefreshCookie writes and clears the refresh-token cookie with the fixed
// contract: HTTP-only, SameSite=Strict, path /, Secure in production.
type RefreshCookie struct {
	MaxAge int
	Secure bool
}

// Set attaches the refresh token as a cookie on the response.
func (rc RefreshCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, token, rc.MaxAge, "/", "", rc.Secure, true)
}

// Clear expires the refresh-token cookie.
func (rc RefreshCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", "", rc.Secure, true)
}
