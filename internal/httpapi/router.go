package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/auth"
	"worldforge/backend/internal/httpapi/middleware"
	"worldforge/backend/internal/security"
)

// RouterConfig carries the knobs the router needs from configuration.
type RouterConfig struct {
	// RefreshCookieMaxAge is the refresh TTL in seconds.
	RefreshCookieMaxAge int
	// SecureCookies marks refresh cookies Secure (production).
	SecureCookies bool
	// Production switches gin to release mode.
	Production bool
}

// NewRouter builds the gin engine: recovery, request id, logging, and the
// token-refresh interceptor globally, then the auth routes. The interceptor
// sits outside the auth gate so it sees the gate's 401s.
func NewRouter(cfg RouterConfig, service *auth.Service, codec *security.TokenCodec, logger *zap.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	cookie := middleware.RefreshCookie{
		MaxAge: cfg.RefreshCookieMaxAge,
		Secure: cfg.SecureCookies,
	}
	handler := NewAuthHandler(service, cookie, logger)

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.TokenRefresh(service, cookie, logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/auth")
	{
		api.POST("/login", handler.Login)
		api.POST("/refresh", handler.Refresh)
		api.POST("/logout", handler.Logout)
		api.POST("/logout-all", middleware.RequireAuth(codec, logger), handler.LogoutAll)
		api.GET("/verify", middleware.RequireAuth(codec, logger), handler.Verify)
		api.GET("/sessions", middleware.RequireAuth(codec, logger), handler.Sessions)
	}

	return r
}
