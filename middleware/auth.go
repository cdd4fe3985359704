package middleware

import (
	"net/http"
	"strings"

	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// ValidateToken requires a valid JWT in "Authorization: Bearer <token>".
// Browsers cannot set headers on websocket upgrades, so a ?token= query is accepted as well.
func ValidateToken(c *gin.Context) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		return
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, claims.Role)
	c.Next()
}

// RequireRole must run after ValidateToken.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// CurrentUserID returns the id stored by ValidateToken, or "" when unauthenticated.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func CurrentEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

func CurrentRole(c *gin.Context) models.Role {
	v, _ := c.Get(ctxRole)
	role, _ := v.(models.Role)
	return role
}
