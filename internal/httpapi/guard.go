package httpapi

import (
	"net/http"
	"strings"

	"callbridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequireAssistantOrigin rejects tool invocations that do not originate
// from the assistant platform. This is basic source filtering, not
// authentication; deployments should additionally validate the platform's
// request signature at the edge.
func RequireAssistantOrigin(allowedHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = c.GetHeader("Referer")
		}
		if !strings.Contains(origin, allowedHost) {
			logger.FromGin(c).Warn("rejected tool invocation from unknown source", "origin", origin)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized source"})
			return
		}
		c.Next()
	}
}
