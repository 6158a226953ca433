package api_test

import (
	"net/http"
	"testing"

	"topup_store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAccess(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.createUser(t, "plain@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	w := env.request(t, http.MethodGet, "/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminBalance(t *testing.T) {
	env := newTestEnv(t)
	target, _ := env.createUser(t, "target@example.com", 100, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")
	path := "/admin/users/1/balance"

	t.Run("add", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, adminToken, map[string]any{"action": "add", "amount": 50})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(150), env.reload(t, target.ID).Balance)
	})

	t.Run("deduct", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, adminToken, map[string]any{"action": "deduct", "amount": 30})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(120), env.reload(t, target.ID).Balance)
	})

	t.Run("deduct past zero refused", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, adminToken, map[string]any{"action": "deduct", "amount": 1000})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient balance", decode(t, w)["error"])
		assert.Equal(t, float64(120), env.reload(t, target.ID).Balance)
	})

	t.Run("unknown action", func(t *testing.T) {
		w := env.request(t, http.MethodPost, path, adminToken, map[string]any{"action": "steal", "amount": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminBan(t *testing.T) {
	env := newTestEnv(t)
	target, targetToken := env.createUser(t, "banned@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	w := env.request(t, http.MethodPost, "/admin/users/1/ban", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_banned"])

	// A banned account is shut out of every authenticated route
	w = env.request(t, http.MethodGet, "/profile", targetToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Toggling again lifts the ban
	w = env.request(t, http.MethodPost, "/admin/users/1/ban", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["is_banned"])
	assert.False(t, env.reload(t, target.ID).IsBanned)
}

func TestAdminReviewOrder(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "buyer@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	newOrder := func(id string) {
		order := domain.Order{
			ID:        id,
			UserID:    user.ID,
			OfferKind: domain.OfferDiamond,
			OfferName: "100 Diamonds",
			Diamonds:  100,
			Price:     150,
			Status:    domain.StatusPending,
		}
		require.NoError(t, env.db.Create(&order).Error)
	}

	t.Run("failed order refunds the snapshot price exactly once", func(t *testing.T) {
		newOrder("ord-refund")
		w := env.request(t, http.MethodPost, "/admin/orders/ord-refund/review", adminToken,
			map[string]any{"action": "Failed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(150), env.reload(t, user.ID).Balance)

		var order domain.Order
		require.NoError(t, env.db.First(&order, "id = ?", "ord-refund").Error)
		assert.Equal(t, domain.StatusFailed, order.Status)

		// A second review hits the Pending-only guard; no double refund
		w = env.request(t, http.MethodPost, "/admin/orders/ord-refund/review", adminToken,
			map[string]any{"action": "Failed"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Order already reviewed", decode(t, w)["error"])
		assert.Equal(t, float64(150), env.reload(t, user.ID).Balance)
	})

	t.Run("completed order moves no money", func(t *testing.T) {
		before := env.reload(t, user.ID).Balance
		newOrder("ord-done")
		w := env.request(t, http.MethodPost, "/admin/orders/ord-done/review", adminToken,
			map[string]any{"action": "Completed"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, env.reload(t, user.ID).Balance)
	})

	t.Run("invalid action", func(t *testing.T) {
		newOrder("ord-bad")
		w := env.request(t, http.MethodPost, "/admin/orders/ord-bad/review", adminToken,
			map[string]any{"action": "Refunded"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/admin/orders/nope/review", adminToken,
			map[string]any{"action": "Completed"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminReviewDeposit(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "depositor@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	newDeposit := func(id string, amount float64) {
		deposit := domain.Deposit{
			ID:     id,
			UserID: user.ID,
			Amount: amount,
			Method: "bKash",
			Status: domain.StatusPending,
		}
		require.NoError(t, env.db.Create(&deposit).Error)
	}

	t.Run("approval credits the claimed amount exactly once", func(t *testing.T) {
		newDeposit("ABC12345", 500)
		w := env.request(t, http.MethodPost, "/admin/deposits/ABC12345/review", adminToken,
			map[string]any{"action": "Completed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(500), env.reload(t, user.ID).Balance)

		w = env.request(t, http.MethodPost, "/admin/deposits/ABC12345/review", adminToken,
			map[string]any{"action": "Completed"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Deposit already reviewed", decode(t, w)["error"])
		assert.Equal(t, float64(500), env.reload(t, user.ID).Balance)
	})

	t.Run("rejection moves no money", func(t *testing.T) {
		before := env.reload(t, user.ID).Balance
		newDeposit("XYZ98765", 300)
		w := env.request(t, http.MethodPost, "/admin/deposits/XYZ98765/review", adminToken,
			map[string]any{"action": "Failed"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, env.reload(t, user.ID).Balance)

		var deposit domain.Deposit
		require.NoError(t, env.db.First(&deposit, "id = ?", "XYZ98765").Error)
		assert.Equal(t, domain.StatusFailed, deposit.Status)
	})
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "statuser@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	require.NoError(t, env.db.Create(&domain.Order{
		ID: "ord-stat", UserID: user.ID, OfferKind: domain.OfferDiamond,
		OfferName: "x", Price: 10, Status: domain.StatusPending,
	}).Error)
	require.NoError(t, env.db.Create(&[]domain.Deposit{
		{ID: "DEP1111AA", UserID: user.ID, Amount: 100, Method: "bKash", Status: domain.StatusPending},
		{ID: "DEP2222BB", UserID: user.ID, Amount: 250, Method: "bKash", Status: domain.StatusCompleted},
	}).Error)

	w := env.request(t, http.MethodGet, "/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["users"])
	assert.Equal(t, float64(1), body["pending_orders"])
	assert.Equal(t, float64(1), body["pending_deposits"])
	assert.Equal(t, float64(250), body["total_deposited"]) // only completed deposits count
}

func TestAdminListFilters(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "filtered@example.com", 0, "user")
	_, adminToken := env.createUser(t, "admin@example.com", 0, "admin")

	orders := []domain.Order{
		{ID: "o1", UserID: user.ID, OfferKind: domain.OfferDiamond, OfferName: "x", Price: 1, Status: domain.StatusPending},
		{ID: "o2", UserID: user.ID, OfferKind: domain.OfferDiamond, OfferName: "x", Price: 1, Status: domain.StatusCompleted},
		{ID: "o3", UserID: user.ID, OfferKind: domain.OfferDiamond, OfferName: "x", Price: 1, Status: domain.StatusPending},
	}
	require.NoError(t, env.db.Create(&orders).Error)

	w := env.request(t, http.MethodGet, "/admin/orders?status=Pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])

	w = env.request(t, http.MethodGet, "/admin/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["total"])
}
