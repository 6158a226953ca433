package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"topup_store/internal/api"
	storedb "topup_store/internal/db"
	"topup_store/internal/domain"
	"topup_store/internal/middleware"
	"topup_store/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// testEnv bundles everything a handler test needs
type testEnv struct {
	db     *gorm.DB
	rdb    *redis.Client
	router *gin.Engine
}

// newTestEnv spins up an in-memory database with the default seed and a
// router mirroring the server's route layout. The Redis client points at a
// closed port, so cache lookups miss and handlers fall through to the
// database, which is the path under test.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Offer{},
		&domain.Order{},
		&domain.Deposit{},
		&domain.Notification{},
		&domain.AppSettings{},
		&domain.PaymentMethod{},
		&domain.SupportContact{},
		&domain.Banner{},
		&domain.AdUnit{},
	))
	storedb.Seed(db)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	r := gin.New()
	r.POST("/user", api.RegisterHandler(db))
	r.GET("/user", api.LoginHandler(db, testSecret))
	r.GET("/content/settings", api.GetSettingsHandler(db, rdb))
	r.GET("/content/banners", api.ListBannersHandler(db, rdb))
	r.GET("/content/contacts", api.ListContactsHandler(db, rdb))

	userGroup := r.Group("")
	userGroup.Use(
		middleware.JWTAuthMiddleware(testSecret),
		middleware.ActiveUserMiddleware(db),
		middleware.MaintenanceMiddleware(db, rdb),
	)
	userGroup.POST("/user/password", api.ChangePasswordHandler(db, rdb))
	userGroup.GET("/profile", api.GetProfileHandler(db, rdb))
	userGroup.PATCH("/profile", api.UpdateProfileHandler(db, rdb))
	userGroup.GET("/store/offers", api.ListOffersHandler(db, rdb))
	userGroup.POST("/store/purchase", api.PurchaseHandler(db, rdb))
	userGroup.GET("/orders", api.ListMyOrdersHandler(db, rdb))
	userGroup.GET("/wallet/methods", api.ListPaymentMethodsHandler(db, rdb))
	userGroup.GET("/wallet/methods/:id/qr", api.PaymentMethodQRHandler(db))
	userGroup.POST("/wallet/deposit", api.SubmitDepositHandler(db, rdb))
	userGroup.GET("/wallet/transactions", api.ListMyDepositsHandler(db, rdb))
	userGroup.GET("/ads/status", api.AdStatusHandler(db, rdb))
	userGroup.POST("/ads/start", api.StartAdHandler(db, testSecret))
	userGroup.POST("/ads/claim", api.ClaimRewardHandler(db, rdb, testSecret))
	userGroup.GET("/ads/units", api.ListAdUnitsHandler(db, rdb))
	userGroup.GET("/notifications", api.ListNotificationsHandler(db))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, rdb))
	adminGroup.POST("/users/:id/balance", api.AdminBalanceHandler(db, rdb))
	adminGroup.POST("/users/:id/ban", api.AdminBanHandler(db, rdb))
	adminGroup.GET("/orders", api.AdminListOrdersHandler(db))
	adminGroup.POST("/orders/:id/review", api.AdminReviewOrderHandler(db, rdb))
	adminGroup.GET("/deposits", api.AdminListDepositsHandler(db))
	adminGroup.POST("/deposits/:id/review", api.AdminReviewDepositHandler(db, rdb))
	adminGroup.GET("/stats", api.AdminStatsHandler(db))
	adminGroup.PUT("/settings", api.UpdateSettingsHandler(db, rdb))
	adminGroup.POST("/offers", api.CreateOfferHandler(db, rdb))
	adminGroup.POST("/notifications", api.CreateNotificationHandler(db))

	return &testEnv{db: db, rdb: rdb, router: r}
}

// createUser inserts a user and returns it with a valid session token
func (e *testEnv) createUser(t *testing.T, email string, balance float64, role string) (*domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     role,
		Balance:  balance,
	}
	require.NoError(t, e.db.Create(user).Error)
	token, err := utils.GenerateJWT(user.ID, testSecret)
	require.NoError(t, err)
	return user, token
}

// request performs an HTTP call against the test router
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a JSON response body
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// reload fetches the current state of a user row
func (e *testEnv) reload(t *testing.T, id uint) *domain.User {
	t.Helper()
	var user domain.User
	require.NoError(t, e.db.First(&user, id).Error)
	return &user
}
