package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barefoot/internal/adapter/out/security"
	"barefoot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	claimsKey       = "barefoot.claims"
	requestIDHeader = "X-Request-ID"
)

// requestLogger attaches a per-request logger to the request context and
// logs the outcome once the handler chain returns.
func requestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		log := base.With("request_id", reqID)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.FromContext(c.Request.Context()).Error("panic recovered", "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
	})
}

// requireAuth accepts only requests carrying a valid bearer token.
func requireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("token rejected", "error", err)
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		log := logger.FromContext(c.Request.Context()).With("user_id", claims.UserID)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by requireAuth.
func ClaimsFrom(c *gin.Context) (*security.UserClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.UserClaims)
	return claims, ok
}
