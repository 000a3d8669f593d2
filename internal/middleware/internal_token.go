package middleware

import (
	"net/http"
	"strings"

	"telecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminTokenAuth guards the operator endpoints with a static bearer token.
// Identity management proper lives outside this service; the token only
// proves the caller is internal tooling.
func AdminTokenAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			response.Error(c, http.StatusServiceUnavailable, "ADMIN_DISABLED", "Admin token is not configured")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		if parts[1] != expected {
			response.Error(c, http.StatusForbidden, "AUTH_INVALID", "Invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
