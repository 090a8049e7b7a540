// Package respond writes the uniform success and error envelopes shared by
// handlers and middleware.
package respond

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
)

// RequestIDKey is the gin context key carrying the request id.
const RequestIDKey = "requestId"

// RequestIDHeader is read from the incoming request and echoed on responses.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the id assigned by the request-id middleware, generating
// one when the middleware is not installed.
func RequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(kind apperrors.Kind) string {
	switch kind {
	case apperrors.KindValidation:
		return "VALIDATION_ERROR"
	case apperrors.KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case apperrors.KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case apperrors.KindNotFound:
		return "NOT_FOUND"
	case apperrors.KindDatabase:
		return "DATABASE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Success writes the uniform success envelope.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// Error classifies err and writes the uniform error envelope. Internal
// detail never reaches the client; the generic message for the error kind
// does.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)
	message := "An unexpected error occurred"
	if status < http.StatusInternalServerError {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		} else {
			message = err.Error()
		}
	}
	id := RequestID(c)

	fields := []zap.Field{
		zap.String("requestId", id),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("category", string(kind)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("server error", fields...)
	} else {
		logger.Warn("client error", fields...)
	}

	ErrorWith(c, status, codeFor(kind), message, string(kind))
}

// ErrorWith writes the error envelope with explicit fields. Used by
// middleware that maps its own statuses.
func ErrorWith(c *gin.Context, status int, code, message, category string) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		Error: errorBody{
			Code:      code,
			Message:   message,
			Category:  category,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: RequestID(c),
		},
	})
}
