package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/shopledger/internal/service/auth"
)

const (
	// ownerIDKey is the gin context key holding the authenticated owner id.
	ownerIDKey = "owner_id"
	// emailKey is the gin context key holding the authenticated email.
	emailKey = "email"
)

// OwnerID extracts the authenticated owner id from the gin context.
// Returns empty string if the request was not authenticated.
func OwnerID(c *gin.Context) string {
	id, _ := c.Value(ownerIDKey).(string)
	return id
}

// Email extracts the authenticated email from the gin context.
func Email(c *gin.Context) string {
	email, _ := c.Value(emailKey).(string)
	return email
}

// RequireAuth validates the bearer token and stores the owner identity in
// the request context. Every product and bill lookup downstream is scoped
// by this identity; the owner id is never accepted from a request body.
func RequireAuth(tokens *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.ErrMissingToken.Error(), "success": false})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.ErrInvalidToken.Error(), "success": false})
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": auth.ErrInvalidToken.Error(), "success": false})
			return
		}

		c.Set(ownerIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}
