package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"topup_store/internal/domain" // Importing domain models
	"topup_store/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UpdateSettingsHandler replaces the singleton settings record
func UpdateSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings domain.AppSettings // Bind JSON request to struct
		if err := c.ShouldBindJSON(&settings); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		settings.ID = 1 // Singleton row
		if err := db.Save(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":    c.GetUint("userID"),
			"maintenance": settings.MaintenanceMode,
		}).Info("Settings updated")
		// Settings feed several caches
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeySettings, utils.CacheKeyOffers)
		c.JSON(http.StatusOK, gin.H{"message": "Settings saved", "settings": settings})
	}
}

// --- Offers ---

// CreateOfferHandler adds a catalog offer
func CreateOfferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var offer domain.Offer // Bind JSON request to struct
		if err := c.ShouldBindJSON(&offer); err != nil || offer.Name == "" || offer.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer"})
			return
		}
		switch offer.Kind {
		case domain.OfferDiamond, domain.OfferLevelUp, domain.OfferMembership, domain.OfferPremium:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown offer kind"})
			return
		}
		offer.ID = 0 // Let the database assign the id
		if offer.InputType == "" {
			offer.InputType = domain.InputUID
		}
		if err := db.Create(&offer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyOffers)
		c.JSON(http.StatusCreated, gin.H{"offer": offer})
	}
}

// UpdateOfferHandler edits a catalog offer
func UpdateOfferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var existing domain.Offer
		if err := db.First(&existing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		var offer domain.Offer
		if err := c.ShouldBindJSON(&offer); err != nil || offer.Name == "" || offer.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer"})
			return
		}
		offer.ID = id // Keep the path id authoritative
		if err := db.Save(&offer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update offer"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyOffers)
		c.JSON(http.StatusOK, gin.H{"offer": offer})
	}
}

// DeleteOfferHandler removes a catalog offer. Existing orders keep their
// snapshots, so history is unaffected.
func DeleteOfferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.Offer{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete offer"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyOffers)
		c.JSON(http.StatusOK, gin.H{"message": "Offer deleted"})
	}
}

// --- Payment methods ---

// CreatePaymentMethodHandler adds a payment method
func CreatePaymentMethodHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var method domain.PaymentMethod
		if err := c.ShouldBindJSON(&method); err != nil || method.Name == "" || method.AccountNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
			return
		}
		method.ID = 0
		if err := db.Create(&method).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Method name already exists"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyMethods)
		c.JSON(http.StatusCreated, gin.H{"method": method})
	}
}

// UpdatePaymentMethodHandler edits a payment method
func UpdatePaymentMethodHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var existing domain.PaymentMethod
		if err := db.First(&existing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		var method domain.PaymentMethod
		if err := c.ShouldBindJSON(&method); err != nil || method.Name == "" || method.AccountNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
			return
		}
		method.ID = id
		if err := db.Save(&method).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment method"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyMethods)
		c.JSON(http.StatusOK, gin.H{"method": method})
	}
}

// DeletePaymentMethodHandler removes a payment method
func DeletePaymentMethodHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.PaymentMethod{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment method"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyMethods)
		c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
	}
}

// --- Banners ---

// CreateBannerHandler adds a home-screen banner
func CreateBannerHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var banner domain.Banner
		if err := c.ShouldBindJSON(&banner); err != nil || banner.ImageURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid banner"})
			return
		}
		banner.ID = 0
		if err := db.Create(&banner).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create banner"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyBanners)
		c.JSON(http.StatusCreated, gin.H{"banner": banner})
	}
}

// DeleteBannerHandler removes a banner
func DeleteBannerHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.Banner{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete banner"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyBanners)
		c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
	}
}

// --- Support contacts ---

// CreateContactHandler adds a support contact
func CreateContactHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var contact domain.SupportContact
		if err := c.ShouldBindJSON(&contact); err != nil || contact.Type == "" || contact.Link == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact"})
			return
		}
		contact.ID = 0
		if err := db.Create(&contact).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyContacts)
		c.JSON(http.StatusCreated, gin.H{"contact": contact})
	}
}

// DeleteContactHandler removes a support contact
func DeleteContactHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.SupportContact{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyContacts)
		c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
	}
}

// --- Ad units ---

// CreateAdUnitHandler adds an injectable ad unit
func CreateAdUnitHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var unit domain.AdUnit
		if err := c.ShouldBindJSON(&unit); err != nil || unit.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ad unit"})
			return
		}
		unit.ID = 0
		if err := db.Create(&unit).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ad unit"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyAdUnits)
		c.JSON(http.StatusCreated, gin.H{"ad_unit": unit})
	}
}

// UpdateAdUnitHandler edits an ad unit (including the active toggle)
func UpdateAdUnitHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var existing domain.AdUnit
		if err := db.First(&existing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad unit not found"})
			return
		}
		var unit domain.AdUnit
		if err := c.ShouldBindJSON(&unit); err != nil || unit.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ad unit"})
			return
		}
		unit.ID = id
		if err := db.Save(&unit).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ad unit"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyAdUnits)
		c.JSON(http.StatusOK, gin.H{"ad_unit": unit})
	}
}

// DeleteAdUnitHandler removes an ad unit
func DeleteAdUnitHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.AdUnit{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ad unit"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, utils.CacheKeyAdUnits)
		c.JSON(http.StatusOK, gin.H{"message": "Ad unit deleted"})
	}
}

// --- Notifications ---

// CreateNotificationHandler publishes a global notification
func CreateNotificationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n domain.Notification
		if err := c.ShouldBindJSON(&n); err != nil || n.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification"})
			return
		}
		switch n.Type {
		case "bonus", "offer", "system", "":
			if n.Type == "" {
				n.Type = "system"
			}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Type must be bonus, offer or system"})
			return
		}
		n.ID = 0
		if err := db.Create(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id": c.GetUint("userID"),
			"title":    n.Title,
			"type":     n.Type,
		}).Info("Notification published")
		c.JSON(http.StatusCreated, gin.H{"notification": n})
	}
}

// DeleteNotificationHandler removes a notification
func DeleteNotificationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := db.Delete(&domain.Notification{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
	}
}
