package middleware

import (
	"net/http"
	"strings"

	"github.com/beslove/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ContextOpenIDKey is where Auth stores the authenticated user's openid.
const ContextOpenIDKey = "openid"

// Auth validates the bearer token and sets the caller's openid in the
// request context.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextOpenIDKey, claims.OpenID)
		c.Next()
	}
}
