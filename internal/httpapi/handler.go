// Package httpapi exposes the auth endpoints over gin and wires the
// middleware chain.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
	"worldforge/backend/internal/auth"
	"worldforge/backend/internal/httpapi/middleware"
	"worldforge/backend/internal/httpapi/respond"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// AuthHandler handles the auth endpoints.
type AuthHandler struct {
	service *auth.Service
	cookie  middleware.RefreshCookie
	logger  *zap.Logger
}

// NewAuthHandler returns an AuthHandler writing refresh cookies with the
// given contract.
func NewAuthHandler(service *auth.Service, cookie middleware.RefreshCookie, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		logger:  logger.Named("auth_handler"),
	}
}

// Login handles POST /api/auth/login. The refresh token travels only in the
// HTTP-only cookie; the body carries the access token and safe user data.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, h.logger, apperrors.New(apperrors.KindValidation, "Invalid request payload"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	h.cookie.Set(c, result.RefreshToken)
	respond.Success(c, http.StatusOK, gin.H{
		"accessToken": result.AccessToken,
		"userData":    result.User,
	})
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from
// the cookie, never the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshCookieName)
	if err != nil || refreshToken == "" {
		respond.Error(c, h.logger, apperrors.New(apperrors.KindAuthentication, "Refresh token not found"))
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), refreshToken, clientMeta(c))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			h.cookie.Clear(c)
		}
		respond.Error(c, h.logger, err)
		return
	}

	h.cookie.Set(c, result.RefreshToken)
	respond.Success(c, http.StatusOK, gin.H{"accessToken": result.AccessToken})
}

// Logout handles POST /api/auth/logout. Succeeds whether or not a valid
// refresh token is presented; the cookie is always cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshCookieName)
	if err == nil && refreshToken != "" {
		if err := h.service.Logout(c.Request.Context(), refreshToken); err != nil {
			respond.Error(c, h.logger, err)
			return
		}
	}

	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// LogoutAll handles POST /api/auth/logout-all. Revokes every session of the
// authenticated caller and clears the cookie.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respond.Error(c, h.logger, apperrors.New(apperrors.KindAuthentication, "User not authenticated"))
		return
	}

	if err := h.service.LogoutAll(c.Request.Context(), identity.ID); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out from all devices"})
}

// Sessions handles GET /api/auth/sessions: the caller's live sessions,
// newest first, without token values.
func (h *AuthHandler) Sessions(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respond.Error(c, h.logger, apperrors.New(apperrors.KindAuthentication, "User not authenticated"))
		return
	}

	sessions, err := h.service.Sessions(c.Request.Context(), identity.ID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Verify handles GET /api/auth/verify. Reaching it means the auth gate
// accepted the access token; it echoes the caller's identity.
func (h *AuthHandler) Verify(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respond.Error(c, h.logger, apperrors.New(apperrors.KindAuthentication, "User not authenticated"))
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"user": identity})
}

func clientMeta(c *gin.Context) auth.ClientMeta {
	return auth.ClientMeta{
		DeviceInfo: c.Request.UserAgent(),
		IPAddress:  c.ClientIP(),
	}
}
