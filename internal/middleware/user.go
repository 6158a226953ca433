package middleware

import (
	"net/http"                    // HTTP status codes
	"topup_store/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ActiveUserMiddleware loads the authenticated user and refuses banned
// accounts. The loaded record is stored in the context so handlers don't
// re-read it.
func ActiveUserMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token is valid but the account no longer exists
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		// Banned accounts cannot act
		if user.IsBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
			return
		}
		c.Set("user", &user) // Store the loaded user for handlers
		c.Next()             // Proceed to the next handler
	}
}

// CurrentUser returns the user loaded by ActiveUserMiddleware
func CurrentUser(c *gin.Context) *domain.User {
	v, exists := c.Get("user")
	if !exists {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
