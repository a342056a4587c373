package middleware

import (
	"net/http" // HTTP status codes

	"paywin/internal/repository" // Profile lookups

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware checks the user's role from the store on each request
func AdminOnlyMiddleware(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c) // Set by JWTAuthMiddleware
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		p, err := store.Profiles().Get(c.Request.Context(), userID)
		// Unknown profiles and non admins are both refused
		if err != nil || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
