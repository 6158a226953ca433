package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Query parsing
	"time"     // Cache TTL

	"topup_store/internal/domain" // Importing domain models
	"topup_store/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// GetSettingsHandler returns the public storefront configuration
func GetSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var settings domain.AppSettings
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeySettings, &settings)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"settings": settings, "cached": true})
			return
		}
		if err := db.First(&settings, 1).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settings not configured"})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeySettings, settings, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"settings": settings, "cached": false})
	}
}

// ListBannersHandler returns the rotating home-screen banners
func ListBannersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var banners []domain.Banner
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyBanners, &banners)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"banners": banners, "cached": true})
			return
		}
		if err := db.Find(&banners).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyBanners, banners, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"banners": banners, "cached": false})
	}
}

// ListContactsHandler returns the support contact links
func ListContactsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var contacts []domain.SupportContact
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyContacts, &contacts)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"contacts": contacts, "cached": true})
			return
		}
		if err := db.Find(&contacts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contacts"})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyContacts, contacts, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"contacts": contacts, "cached": false})
	}
}

// ListNotificationsHandler returns global notifications, newest first. The
// optional ?after=<unix ms> echoes back how many are newer, so the client
// only has to persist its last-read timestamp locally.
func ListNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize // Calculate offset
		var notifications []domain.Notification
		if err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		resp := gin.H{"notifications": notifications, "page": page, "page_size": pageSize}
		if after := c.Query("after"); after != "" {
			if ts, err := strconv.ParseInt(after, 10, 64); err == nil {
				var unread int64
				if err := db.Model(&domain.Notification{}).Where("created_at > ?", ts).Count(&unread).Error; err == nil {
					resp["unread"] = unread
				}
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
