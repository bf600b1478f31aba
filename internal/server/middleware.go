package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const performedByHeader = "X-Performed-By"

// APIKeyRequired authenticates requests with a bearer API key.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.apikeySvc.Verify(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set("api_key_name", key.Name)
		c.Next()
	}
}

// PublicRateLimit enforces the per-client fixed window on the share surface.
func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, _ := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// performedBy identifies the acting operator for audit entries. Falls back
// to the authenticated key name.
func performedBy(c *gin.Context) string {
	if actor := strings.TrimSpace(c.GetHeader(performedByHeader)); actor != "" {
		return actor
	}
	return c.GetString("api_key_name")
}
