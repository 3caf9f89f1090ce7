package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careerportal/internal/auth"
)

const adminEmailKey = "adminEmail"

// AuthMiddleware gates the dashboard endpoints. A missing or malformed
// Authorization header is 401; a token that is present but fails verification
// is 403.
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "invalid token"})
			return
		}

		c.Set(adminEmailKey, claims.Email)
		c.Next()
	}
}

// AdminEmailFromContext returns the authenticated admin's email.
func AdminEmailFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(adminEmailKey)
	if !ok {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}
