package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worldforge/backend/internal/auth"
)

// TokenRefresh intercepts 401 responses caused by a rejected access token
// and, when a refresh-token cookie is present, transparently rotates the
// session: the 401 becomes a 200 carrying a fresh access token, the rotated
// refresh token is set as a cookie, and X-Token-Refreshed signals the client
// to retry. A failed rotation clears the cookie and releases the original
// 401 unchanged. Responses other than token-related 401s pass through
// untouched, and at most one rotation is attempted per request.
func TokenRefresh(svc *auth.Service, cookie RefreshCookie, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("token_refresh")
	return func(c *gin.Context) {
		buf := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = buf
		c.Next()
		c.Writer = buf.ResponseWriter

		if buf.Status() != http.StatusUnauthorized || !tokenRelated(buf.body.Bytes()) {
			buf.release()
			return
		}

		refreshToken, err := c.Cookie(RefreshCookieName)
		if err != nil || refreshToken == "" {
			buf.release()
			return
		}

		result, err := svc.Refresh(c.Request.Context(), refreshToken, auth.ClientMeta{
			DeviceInfo: c.Request.UserAgent(),
			IPAddress:  c.ClientIP(),
		})
		if err != nil {
			cookie.Clear(c)
			buf.release()
			return
		}

		logger.Info("access token refreshed in-flight",
			zap.String("path", c.Request.URL.Path))
		cookie.Set(c, result.RefreshToken)
		c.Writer.Header().Set("X-Token-Refreshed", "true")

		payload, err := json.Marshal(gin.H{
			"success":        true,
			"data":           gin.H{"accessToken": result.AccessToken},
			"tokenRefreshed": true,
		})
		if err != nil {
			buf.release()
			return
		}
		c.Writer.WriteHeader(http.StatusOK)
		_, _ = c.Writer.Write(payload)
	}
}

// tokenRelated reports whether a 401 body names an access-token failure.
// Missing-token 401s are excluded: with no access token presented there is
// no session to refresh.
func tokenRelated(body []byte) bool {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	msg := envelope.Error.Message
	return strings.Contains(msg, "expired") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "Token")
}

// bufferedWriter holds back status and body so the interceptor can decide
// whether to release or replace the response. Headers pass through.
type bufferedWriter struct {
	gin.ResponseWriter
	code int
	body bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(code int) { w.code = code }

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.body.Write(b) }

func (w *bufferedWriter) WriteString(s string) (int, error) { return w.body.WriteString(s) }

func (w *bufferedWriter) Status() int {
	if w.code != 0 {
		return w.code
	}
	return w.ResponseWriter.Status()
}

func (w *bufferedWriter) Size() int { return w.body.Len() }

func (w *bufferedWriter) Written() bool { return w.code != 0 || w.body.Len() > 0 }

// release writes the held response to the real writer unchanged.
func (w *bufferedWriter) release() {
	w.ResponseWriter.WriteHeader(w.Status())
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	}
}
