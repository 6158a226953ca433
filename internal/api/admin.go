package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTL

	"topup_store/internal/domain" // Importing domain models
	"topup_store/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// BalanceUpdateRequest is the admin add/deduct balance tool
type BalanceUpdateRequest struct {
	Action string  `json:"action" binding:"required"`      // add or deduct
	Amount float64 `json:"amount" binding:"required,gt=0"` // Amount to move
}

// ReviewRequest resolves a pending order or deposit
type ReviewRequest struct {
	Action string `json:"action" binding:"required"` // Completed or Failed
}

// ListUsersHandler returns all users, with optional ban and search filters
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Create a cache key based on pagination and filter parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") +
			":size=" + c.DefaultQuery("page_size", "20") +
			":banned=" + c.DefaultQuery("banned", "") +
			":q=" + c.DefaultQuery("q", "")
		var cached struct {
			Users      []domain.User `json:"users"`
			Page       int           `json:"page"`
			PageSize   int           `json:"page_size"`
			Total      int64         `json:"total"`
			TotalPages int           `json:"total_pages"`
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize // Calculate offset for pagination
		query := db.Model(&domain.User{})
		if banned := c.Query("banned"); banned != "" {
			query = query.Where("is_banned = ?", banned == "true") // Filter by ban state
		}
		if q := c.Query("q"); q != "" {
			like := "%" + q + "%"
			query = query.Where("name LIKE ? OR email LIKE ?", like, like) // Search by name or email
		}
		var total int64 // Total user count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User
		if err := query.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		respData := gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
			"cached":      false,
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// AdminBalanceHandler credits or debits a user's balance. Deductions are
// conditional on sufficient funds, so the balance cannot go negative.
func AdminBalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BalanceUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var target domain.User // Fetch the target user
		if err := db.First(&target, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		switch req.Action {
		case "add":
			if err := db.Model(&target).Update("balance", gorm.Expr("balance + ?", req.Amount)).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
				return
			}
		case "deduct":
			// Deduct only if the balance covers it
			res := db.Model(&domain.User{}).
				Where("id = ? AND balance >= ?", target.ID, req.Amount).
				Update("balance", gorm.Expr("balance - ?", req.Amount))
			if res.Error != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
				return
			}
			if res.RowsAffected == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
				return
			}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be add or deduct"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":  c.GetUint("userID"), // Acting admin
			"target_id": target.ID,           // Affected user
			"action":    req.Action,          // add or deduct
			"amount":    req.Amount,          // Amount moved
			"type":      "admin_balance",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Info("Admin balance update")
		utils.InvalidateUserCache(context.Background(), rdb, target.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Balance updated"})
	}
}

// AdminBanHandler toggles a user's banned flag
func AdminBanHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var target domain.User // Fetch the target user
		if err := db.First(&target, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		newState := !target.IsBanned
		if err := db.Model(&target).Update("is_banned", newState).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":  c.GetUint("userID"),
			"target_id": target.ID,
			"banned":    newState,
		}).Info("Ban state toggled")
		utils.InvalidateUserCache(context.Background(), rdb, target.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Ban state updated", "is_banned": newState})
	}
}

// AdminListOrdersHandler returns all orders, filterable by status
func AdminListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize
		query := db.Model(&domain.Order{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}
		var orders []domain.Order
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":      orders,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// AdminReviewOrderHandler resolves a pending order. Completed assumes the
// goods were delivered out-of-band; Failed refunds the recorded price. The
// status flip is conditional on Pending, so two admins acting at once
// cannot both apply effects and a Failed order refunds exactly once.
func AdminReviewOrderHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Action != domain.StatusCompleted && req.Action != domain.StatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be Completed or Failed"})
			return
		}
		var order domain.Order // Fetch the order under review
		if err := db.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// Only a Pending order may be resolved
			res := tx.Model(&domain.Order{}).
				Where("id = ? AND status = ?", order.ID, domain.StatusPending).
				Update("status", req.Action)
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound // Already resolved by someone else
			}
			// A failed order refunds the snapshot price
			if req.Action == domain.StatusFailed {
				if err := tx.Model(&domain.User{}).
					Where("id = ?", order.UserID).
					Update("balance", gorm.Expr("balance + ?", order.Price)).Error; err != nil {
					return err // Return error to rollback
				}
			}
			return nil // Commit transaction
		})
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusConflict, gin.H{"error": "Order already reviewed"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"order_id": order.ID,
				"action":   req.Action,
				"error":    err.Error(),
			}).Error("Order review failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Review failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id": c.GetUint("userID"), // Acting admin
			"order_id": order.ID,            // Reviewed order
			"user_id":  order.UserID,        // Order owner
			"action":   req.Action,          // Completed or Failed
			"refund":   req.Action == domain.StatusFailed,
			"price":    order.Price,
		}).Info("Order reviewed")
		utils.InvalidateUserCache(context.Background(), rdb, order.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Order " + req.Action})
	}
}

// AdminListDepositsHandler returns all deposit claims, filterable by status
func AdminListDepositsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize
		query := db.Model(&domain.Deposit{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count deposits"})
			return
		}
		var deposits []domain.Deposit
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&deposits).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposits"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"deposits":    deposits,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// AdminReviewDepositHandler resolves a pending deposit. Completed credits
// the recorded amount; Failed changes nothing (funds were never credited).
// Same Pending-only guard as order review, so a deposit credits once.
func AdminReviewDepositHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Action != domain.StatusCompleted && req.Action != domain.StatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be Completed or Failed"})
			return
		}
		var deposit domain.Deposit // Fetch the deposit under review
		if err := db.Where("id = ?", c.Param("id")).First(&deposit).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// Only a Pending deposit may be resolved
			res := tx.Model(&domain.Deposit{}).
				Where("id = ? AND status = ?", deposit.ID, domain.StatusPending).
				Update("status", req.Action)
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound // Already resolved by someone else
			}
			// Approval credits the claimed amount
			if req.Action == domain.StatusCompleted {
				if err := tx.Model(&domain.User{}).
					Where("id = ?", deposit.UserID).
					Update("balance", gorm.Expr("balance + ?", deposit.Amount)).Error; err != nil {
					return err // Return error to rollback
				}
			}
			return nil // Commit transaction
		})
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusConflict, gin.H{"error": "Deposit already reviewed"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"deposit_id": deposit.ID,
				"action":     req.Action,
				"error":      err.Error(),
			}).Error("Deposit review failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Review failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"admin_id":   c.GetUint("userID"), // Acting admin
			"deposit_id": deposit.ID,          // Reviewed deposit
			"user_id":    deposit.UserID,      // Deposit owner
			"action":     req.Action,          // Completed or Failed
			"amount":     deposit.Amount,
		}).Info("Deposit reviewed")
		utils.InvalidateUserCache(context.Background(), rdb, deposit.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit " + req.Action})
	}
}

// AdminStatsHandler summarizes the console dashboard numbers
func AdminStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			userCount       int64
			pendingOrders   int64
			pendingDeposits int64
			totalDeposited  float64
			totalAdsWatched int64
		)
		if err := db.Model(&domain.User{}).Count(&userCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		db.Model(&domain.Order{}).Where("status = ?", domain.StatusPending).Count(&pendingOrders)
		db.Model(&domain.Deposit{}).Where("status = ?", domain.StatusPending).Count(&pendingDeposits)
		// Completed deposits are the money that actually arrived
		db.Model(&domain.Deposit{}).
			Where("status = ?", domain.StatusCompleted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&totalDeposited)
		db.Model(&domain.User{}).Select("COALESCE(SUM(total_ads_watched), 0)").Scan(&totalAdsWatched)
		c.JSON(http.StatusOK, gin.H{
			"users":             userCount,
			"pending_orders":    pendingOrders,
			"pending_deposits":  pendingDeposits,
			"total_deposited":   totalDeposited,
			"total_ads_watched": totalAdsWatched,
		})
	}
}

// parseID is a small helper for numeric path params
func parseID(c *gin.Context) (uint, bool) {
	v, err := strconv.Atoi(c.Param("id"))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(v), true
}
