package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reelctl/internal/logging"
	"reelctl/internal/services"
)

// authMiddleware validates bearer tokens. An empty token disables the check.
func (s *Server) authMiddleware() gin.HandlerFunc {
	token := s.token
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		got, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok && strings.HasPrefix(c.Request.URL.Path, "/ws/") {
			// browsers cannot set headers on websocket upgrades
			got, ok = c.GetQuery("token")
		}
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := services.EnsureRequestID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		logger := logging.WithContext(ctx, s.logger)
		attrs := []logging.Attr{
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed", logging.Args(attrs...)...)
			return
		}
		logger.Debug("request", logging.Args(attrs...)...)
	}
}
