package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/apperrors"
	"worldforge/backend/internal/httpapi/respond"
)

// Recovery converts handler panics into the uniform 500 envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked",
					zap.String("requestId", respond.RequestID(c)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
				)
				respond.ErrorWith(c, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred",
					string(apperrors.KindInternal))
			}
		}()
		c.Next()
	}
}
