package middleware

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"topup_store/internal/domain" // Importing domain models
	"topup_store/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// MaintenanceMiddleware blocks user actions while maintenance mode is on.
// Admins pass through so the console stays reachable. Settings are read
// through the cache; the admin settings handler invalidates it on save.
func MaintenanceMiddleware(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var settings domain.AppSettings
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeySettings, &settings)
		// On a cache miss, fall back to the database
		if err != nil || !found {
			if err := db.First(&settings, 1).Error; err != nil {
				c.Next() // No settings row yet, nothing to enforce
				return
			}
			_ = utils.SetCache(ctx, rdb, utils.CacheKeySettings, settings, 30*time.Second)
		}
		// Not in maintenance, proceed
		if !settings.MaintenanceMode {
			c.Next()
			return
		}
		// Admins bypass maintenance mode
		if user := CurrentUser(c); user != nil && user.Role == "admin" {
			c.Next()
			return
		}
		notice := settings.Notice
		if notice == "" {
			notice = "The store is under maintenance. Please try again later."
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Maintenance mode", "notice": notice})
	}
}
