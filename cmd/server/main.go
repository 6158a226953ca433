package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging
	"strings" // CORS origin parsing
	"time"    // Rate limiter windows

	"topup_store/internal/api"        // Custom package for API handlers
	"topup_store/internal/config"     // Custom package for configuration
	"topup_store/internal/jobs"       // Background cron jobs
	"topup_store/internal/middleware" // Custom package for middleware

	"github.com/gin-contrib/cors"  // CORS for the web client
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Background jobs: ad lockout sweep
	scheduler := jobs.NewScheduler(db)
	scheduler.Start()
	defer scheduler.Stop()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS for the single-page web client
	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins != "" {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// Login attempts are throttled per IP
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	loginLimiter.StartCleanup(5*time.Minute, 15*time.Minute)

	// Auth routes
	r.POST("/user", api.RegisterHandler(db))                                       // Registration endpoint
	r.GET("/user", loginLimiter.Middleware(), api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Public storefront content
	r.GET("/content/settings", api.GetSettingsHandler(db, redisClient))  // App settings endpoint
	r.GET("/content/banners", api.ListBannersHandler(db, redisClient))   // Banners endpoint
	r.GET("/content/contacts", api.ListContactsHandler(db, redisClient)) // Support contacts endpoint

	// Authenticated user routes
	userGroup := r.Group("")
	userGroup.Use(
		middleware.JWTAuthMiddleware(cfg.JWTSecret),       // Session token required
		middleware.ActiveUserMiddleware(db),               // Banned accounts refused
		middleware.MaintenanceMiddleware(db, redisClient), // Maintenance gate, admins pass
	)
	userGroup.POST("/user/password", api.ChangePasswordHandler(db, redisClient)) // Change password endpoint
	userGroup.GET("/profile", api.GetProfileHandler(db, redisClient))            // Profile endpoint
	userGroup.PATCH("/profile", api.UpdateProfileHandler(db, redisClient))       // Profile update endpoint

	userGroup.GET("/store/offers", api.ListOffersHandler(db, redisClient))  // Offer catalog endpoint
	userGroup.POST("/store/purchase", api.PurchaseHandler(db, redisClient)) // Purchase endpoint
	userGroup.GET("/orders", api.ListMyOrdersHandler(db, redisClient))      // Order history endpoint

	userGroup.GET("/wallet/methods", api.ListPaymentMethodsHandler(db, redisClient))  // Payment methods endpoint
	userGroup.GET("/wallet/methods/:id/qr", api.PaymentMethodQRHandler(db))           // Account number QR endpoint
	userGroup.POST("/wallet/deposit", api.SubmitDepositHandler(db, redisClient))      // Deposit claim endpoint
	userGroup.GET("/wallet/transactions", api.ListMyDepositsHandler(db, redisClient)) // Deposit history endpoint

	userGroup.GET("/ads/status", api.AdStatusHandler(db, redisClient))                   // Ad watcher state endpoint
	userGroup.POST("/ads/start", api.StartAdHandler(db, cfg.JWTSecret))                  // Ad start endpoint
	userGroup.POST("/ads/claim", api.ClaimRewardHandler(db, redisClient, cfg.JWTSecret)) // Reward claim endpoint
	userGroup.GET("/ads/units", api.ListAdUnitsHandler(db, redisClient))                 // Ad units endpoint

	userGroup.GET("/notifications", api.ListNotificationsHandler(db)) // Notifications endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))                 // List users endpoint
	adminGroup.POST("/users/:id/balance", api.AdminBalanceHandler(db, redisClient)) // Balance tools endpoint
	adminGroup.POST("/users/:id/ban", api.AdminBanHandler(db, redisClient))         // Ban toggle endpoint

	adminGroup.GET("/orders", api.AdminListOrdersHandler(db))                               // List orders endpoint
	adminGroup.POST("/orders/:id/review", api.AdminReviewOrderHandler(db, redisClient))     // Order review endpoint
	adminGroup.GET("/deposits", api.AdminListDepositsHandler(db))                           // List deposits endpoint
	adminGroup.POST("/deposits/:id/review", api.AdminReviewDepositHandler(db, redisClient)) // Deposit review endpoint
	adminGroup.GET("/stats", api.AdminStatsHandler(db))                                     // Dashboard stats endpoint

	adminGroup.GET("/settings", api.GetSettingsHandler(db, redisClient))    // Settings endpoint
	adminGroup.PUT("/settings", api.UpdateSettingsHandler(db, redisClient)) // Settings update endpoint

	adminGroup.POST("/offers", api.CreateOfferHandler(db, redisClient))       // Offer create endpoint
	adminGroup.PUT("/offers/:id", api.UpdateOfferHandler(db, redisClient))    // Offer update endpoint
	adminGroup.DELETE("/offers/:id", api.DeleteOfferHandler(db, redisClient)) // Offer delete endpoint

	adminGroup.POST("/methods", api.CreatePaymentMethodHandler(db, redisClient))       // Method create endpoint
	adminGroup.PUT("/methods/:id", api.UpdatePaymentMethodHandler(db, redisClient))    // Method update endpoint
	adminGroup.DELETE("/methods/:id", api.DeletePaymentMethodHandler(db, redisClient)) // Method delete endpoint

	adminGroup.POST("/banners", api.CreateBannerHandler(db, redisClient))       // Banner create endpoint
	adminGroup.DELETE("/banners/:id", api.DeleteBannerHandler(db, redisClient)) // Banner delete endpoint

	adminGroup.POST("/contacts", api.CreateContactHandler(db, redisClient))       // Contact create endpoint
	adminGroup.DELETE("/contacts/:id", api.DeleteContactHandler(db, redisClient)) // Contact delete endpoint

	adminGroup.POST("/adunits", api.CreateAdUnitHandler(db, redisClient))       // Ad unit create endpoint
	adminGroup.PUT("/adunits/:id", api.UpdateAdUnitHandler(db, redisClient))    // Ad unit update endpoint
	adminGroup.DELETE("/adunits/:id", api.DeleteAdUnitHandler(db, redisClient)) // Ad unit delete endpoint

	adminGroup.POST("/notifications", api.CreateNotificationHandler(db))       // Notification create endpoint
	adminGroup.DELETE("/notifications/:id", api.DeleteNotificationHandler(db)) // Notification delete endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
