package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel errors
	"net/http" // HTTP status codes
	"regexp"   // Identifier validation
	"strconv"  // String conversion
	"time"     // Cache TTL

	"topup_store/internal/domain"     // Importing domain models
	"topup_store/internal/middleware" // Current user accessor
	"topup_store/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Random order ids
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// digitsRe matches game-uid purchase identifiers
var digitsRe = regexp.MustCompile(`^[0-9]{6,12}$`)

// errInsufficientBalance aborts a debit transaction when the conditional
// update matches no row
var errInsufficientBalance = errors.New("insufficient balance")

// PurchaseRequest represents a purchase confirmation
type PurchaseRequest struct {
	OfferID    uint   `json:"offer_id" binding:"required"`   // Catalog offer to buy
	Identifier string `json:"identifier" binding:"required"` // Game uid or delivery email
}

// offerCatalog is the cached shape of the storefront
type offerCatalog struct {
	Diamonds   []domain.Offer `json:"diamonds"`
	LevelUp    []domain.Offer `json:"level_up"`
	Membership []domain.Offer `json:"membership"`
	Premium    []domain.Offer `json:"premium"`
}

// ListOffersHandler returns active offers grouped by kind, honoring the
// admin visibility toggles
func ListOffersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var catalog offerCatalog
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyOffers, &catalog)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"offers": catalog, "cached": true})
			return
		}
		var settings domain.AppSettings
		_ = db.First(&settings, 1).Error // Missing row falls back to zero-value toggles
		var offers []domain.Offer
		if err := db.Where("active = ?", true).Order("price asc").Find(&offers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
			return
		}
		// Group by kind, dropping tabs the admin has hidden
		for _, o := range offers {
			switch o.Kind {
			case domain.OfferDiamond:
				if settings.ShowDiamonds {
					catalog.Diamonds = append(catalog.Diamonds, o)
				}
			case domain.OfferLevelUp:
				if settings.ShowLevelUp {
					catalog.LevelUp = append(catalog.LevelUp, o)
				}
			case domain.OfferMembership:
				if settings.ShowMembership {
					catalog.Membership = append(catalog.Membership, o)
				}
			case domain.OfferPremium:
				if settings.ShowPremium {
					catalog.Premium = append(catalog.Premium, o)
				}
			}
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyOffers, catalog, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"offers": catalog, "cached": false})
	}
}

// PurchaseHandler debits the offer price and files a Pending order. The
// debit is conditional on sufficient balance inside one transaction, so a
// concurrent purchase can never drive the balance negative.
func PurchaseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req PurchaseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var offer domain.Offer // Fetch the offer being bought
		if err := db.Where("active = ?", true).First(&offer, req.OfferID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		// Validate the identifier against what the offer collects
		if offer.InputType == domain.InputEmail {
			if !isValidEmail(req.Identifier) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
				return
			}
		} else if !digitsRe.MatchString(req.Identifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Player ID must be 6-12 digits"})
			return
		}
		order := domain.Order{
			ID:         uuid.NewString(), // Random order id
			UserID:     user.ID,
			OfferID:    offer.ID,
			OfferKind:  offer.Kind,
			OfferName:  offer.Name,
			Diamonds:   offer.Diamonds,
			Price:      offer.Price,
			Identifier: req.Identifier,
			Status:     domain.StatusPending,
		}
		// Atomic debit + order creation
		err := db.Transaction(func(tx *gorm.DB) error {
			// Debit only if the balance covers the price
			res := tx.Model(&domain.User{}).
				Where("id = ? AND balance >= ?", user.ID, offer.Price).
				Update("balance", gorm.Expr("balance - ?", offer.Price))
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return errInsufficientBalance // Balance was short, rollback
			}
			// File the pending order
			if err := tx.Create(&order).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			if errors.Is(err, errInsufficientBalance) {
				// Balance was short; nothing was debited and no order was written
				c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id":  user.ID,     // Buyer
				"offer_id": offer.ID,    // Offer
				"price":    offer.Price, // Price
				"error":    err.Error(), // Error message
			}).Error("Purchase failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase failed"})
			return
		}
		// Log the money movement
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,                         // Buyer
			"order_id":  order.ID,                        // New order
			"offer":     offer.Name,                      // Offer snapshot
			"price":     offer.Price,                     // Price debited
			"type":      "purchase",                      // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Purchase transaction")
		utils.InvalidateUserCache(context.Background(), rdb, user.ID) // Balance and order list changed
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
	}
}

// ListMyOrdersHandler returns the authenticated user's orders
func ListMyOrdersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize // Calculate offset
		ctx := context.Background()
		cacheKey := utils.CacheKeyOrders + strconv.Itoa(int(userID.(uint))) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached struct {
			Orders     []domain.Order `json:"orders"`
			Page       int            `json:"page"`
			PageSize   int            `json:"page_size"`
			Total      int64          `json:"total"`
			TotalPages int            `json:"total_pages"`
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"orders":      cached.Orders,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		var total int64 // Total order count
		if err := db.Model(&domain.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}
		var orders []domain.Order
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		resp := gin.H{
			"orders":      orders,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}
