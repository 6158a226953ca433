package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"regexp"   // Player UID validation
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Cache TTL

	"topup_store/internal/domain"     // Importing domain models
	"topup_store/internal/middleware" // Current user accessor
	"topup_store/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// playerUIDRe matches a numeric game id of plausible length
var playerUIDRe = regexp.MustCompile(`^[0-9]{6,12}$`)

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	Name      *string `json:"name"`       // Display name
	PlayerUID *string `json:"player_uid"` // In-game player id
	AvatarURL *string `json:"avatar_url"` // Avatar image URL
}

// GetProfileHandler returns the authenticated user's record
func GetProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()
		cacheKey := utils.CacheKeyUser + strconv.Itoa(int(userID.(uint)))
		var user domain.User
		found, err := utils.GetCache(ctx, rdb, cacheKey, &user) // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"user": user, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, user, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"user": user, "cached": false})
	}
}

// UpdateProfileHandler edits name, player uid and avatar
func UpdateProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{} // Only provided fields are touched
		if req.Name != nil {
			if !isValidName(*req.Name) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be 3-30 letters"})
				return
			}
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.PlayerUID != nil {
			// Empty clears the saved game id, otherwise it must be numeric
			if *req.PlayerUID != "" && !playerUIDRe.MatchString(*req.PlayerUID) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Player ID must be 6-12 digits"})
				return
			}
			updates["player_uid"] = *req.PlayerUID
		}
		if req.AvatarURL != nil {
			updates["avatar_url"] = *req.AvatarURL
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		// Updates with a map does not touch the struct; re-read so the
		// response carries what was actually written
		if err := db.First(user, user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		utils.InvalidateUserCache(context.Background(), rdb, user.ID) // Drop cached profile
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
	}
}
