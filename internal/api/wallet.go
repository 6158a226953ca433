package api

import (
	"context"  // Context for Redis operations
	"errors"   // Duplicate key detection
	"net/http" // HTTP status codes
	"regexp"   // Transaction id validation
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Cache TTL

	"topup_store/internal/domain"     // Importing domain models
	"topup_store/internal/middleware" // Current user accessor
	"topup_store/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"          // Gin web framework
	"github.com/redis/go-redis/v9"      // Redis client
	"github.com/sirupsen/logrus"        // Logging library
	qrcode "github.com/skip2/go-qrcode" // QR code rendering
	"gorm.io/gorm"                      // GORM ORM library
)

// DepositRequest represents a manual deposit claim
type DepositRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`    // Claimed amount
	Method        string  `json:"method" binding:"required"`         // Payment method name
	TransactionID string  `json:"transaction_id" binding:"required"` // Provider reference entered by the user
}

var (
	alnumRe   = regexp.MustCompile(`^[a-zA-Z0-9]+$`) // Alphanumeric only
	numericRe = regexp.MustCompile(`^[0-9]+$`)       // Purely numeric
)

// hasRepeatRun reports whether s contains 3+ identical characters in a row.
// Stands in for the backreference `(.)\1{2,}` which RE2 cannot express.
func hasRepeatRun(s string) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// isValidTrxID applies the plausibility heuristics to a transaction id.
// This is a client-side-style filter, not payment verification: real
// confirmation happens when an admin reviews the deposit.
func isValidTrxID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false // Empty
	}
	if !alnumRe.MatchString(id) {
		return false // Symbols or whitespace
	}
	if hasRepeatRun(id) {
		return false // Runs like "aaaa" are keyboard mashing
	}
	if len(id) < 8 {
		return false // Too short for a provider reference
	}
	if numericRe.MatchString(id) {
		return false // Real references mix letters and digits
	}
	return true
}

// ListPaymentMethodsHandler returns the admin-configured payment methods
func ListPaymentMethodsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var methods []domain.PaymentMethod
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyMethods, &methods)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"methods": methods, "cached": true})
			return
		}
		if err := db.Find(&methods).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment methods"})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyMethods, methods, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"methods": methods, "cached": false})
	}
}

// PaymentMethodQRHandler renders the method's receiving account number as a
// QR PNG for the deposit wizard's second step
func PaymentMethodQRHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var method domain.PaymentMethod
		if err := db.First(&method, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		png, err := qrcode.Encode(method.AccountNumber, qrcode.Medium, 256)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// SubmitDepositHandler files a Pending deposit claim. No balance changes
// here; credit happens when an admin marks the deposit Completed.
func SubmitDepositHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Amount must stay within the configured bounds
		var settings domain.AppSettings
		_ = db.First(&settings, 1).Error
		min, max := settings.DepositMin, settings.DepositMax
		if min <= 0 {
			min = 20 // Safe defaults when no settings row exists
		}
		if max <= 0 {
			max = 10000
		}
		if req.Amount < min {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum deposit is " + strconv.FormatFloat(min, 'f', -1, 64)})
			return
		}
		if req.Amount > max {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum deposit is " + strconv.FormatFloat(max, 'f', -1, 64)})
			return
		}
		// The method must be one the admin configured
		var method domain.PaymentMethod
		if err := db.Where("name = ?", req.Method).First(&method).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method"})
			return
		}
		// Heuristic plausibility check on the provider reference
		if !isValidTrxID(req.TransactionID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
			return
		}
		deposit := domain.Deposit{
			ID:     strings.ToUpper(strings.TrimSpace(req.TransactionID)), // Upper-cased reference as key
			UserID: user.ID,
			Amount: req.Amount,
			Method: method.Name,
			Status: domain.StatusPending,
		}
		if err := db.Create(&deposit).Error; err != nil {
			// A primary key collision means this reference was already claimed
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Transaction ID already submitted"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id":    user.ID,
				"deposit_id": deposit.ID,
				"error":      err.Error(),
			}).Error("Deposit claim failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit deposit"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,        // Depositor
			"deposit_id": deposit.ID,     // Provider reference
			"amount":     deposit.Amount, // Claimed amount
			"method":     deposit.Method, // Payment method
			"type":       "deposit_claim",
			"timestamp":  time.Now().Format(time.RFC3339),
		}).Info("Deposit claim filed")
		utils.InvalidateUserCache(context.Background(), rdb, user.ID) // Deposit list changed
		c.JSON(http.StatusCreated, gin.H{"message": "Deposit submitted for review", "deposit": deposit})
	}
}

// ListMyDepositsHandler returns the authenticated user's deposit claims
func ListMyDepositsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize // Calculate offset
		ctx := context.Background()
		cacheKey := utils.CacheKeyDeposits + strconv.Itoa(int(userID.(uint))) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached struct {
			Deposits   []domain.Deposit `json:"deposits"`
			Page       int              `json:"page"`
			PageSize   int              `json:"page_size"`
			Total      int64            `json:"total"`
			TotalPages int              `json:"total_pages"`
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"deposits":    cached.Deposits,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		var total int64 // Total deposit count
		if err := db.Model(&domain.Deposit{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count deposits"})
			return
		}
		var deposits []domain.Deposit
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&deposits).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposits"})
			return
		}
		resp := gin.H{
			"deposits":    deposits,
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
