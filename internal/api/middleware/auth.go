package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vibhu2208/Aadhar-Homes/internal/auth"
)

const (
	// ContextKeyAccountID holds the key for the account ID in Gin context.
	ContextKeyAccountID = "accountID"
	// ContextKeyRole holds the key for the account role in Gin context.
	ContextKeyRole = "role"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware creates a Gin middleware that requires a valid JWT.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization token required",
			})
			return
		}

		claims, err := auth.ValidateJWT(jwtSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth populates the account context when a valid token is present
// but lets anonymous requests through. Registration uses it: the first-ever
// registration is anonymous, later ones need an admin token.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := auth.ValidateJWT(jwtSecret, token); err == nil {
				c.Set(ContextKeyAccountID, claims.AccountID)
				c.Set(ContextKeyRole, claims.Role)
			}
		}
		c.Next()
	}
}

// AdminMiddleware requires the authenticated account to be an admin.
// Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Administrator privileges required",
			})
			return
		}
		c.Next()
	}
}
