package api_test

import (
	"net/http"
	"testing"
	"time"

	"topup_store/internal/domain"
	"topup_store/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updateSettings mutates the singleton settings row for a test
func updateSettings(t *testing.T, env *testEnv, mutate func(*domain.AppSettings)) {
	t.Helper()
	var settings domain.AppSettings
	require.NoError(t, env.db.First(&settings, 1).Error)
	mutate(&settings)
	require.NoError(t, env.db.Save(&settings).Error)
}

func TestAdStatus(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "watcher@example.com", 0, "user")

	w := env.request(t, http.MethodGet, "/ads/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["earn_enabled"])
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, float64(20), body["daily_limit"])
	assert.Equal(t, float64(5), body["reward_per_ad"])
	assert.Equal(t, false, body["locked"])
	assert.Equal(t, float64(0), body["cooldown_remaining"])
}

func TestStartAd(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "starter@example.com", 0, "user")

	t.Run("web source active but unconfigured falls back to simulated", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "simulated", body["source"])
		assert.Equal(t, float64(2), body["duration"])
		assert.Equal(t, float64(5), body["reward"])
		require.NotEmpty(t, body["ad_token"])

		// The claim token is not yet valid; the ad has not run its duration
		w = env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{
			"ad_token": body["ad_token"],
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid or premature claim", decode(t, w)["error"])
	})

	t.Run("video url plays as a video source", func(t *testing.T) {
		updateSettings(t, env, func(s *domain.AppSettings) {
			s.WebAdURL = "https://cdn.example.com/spot.mp4"
			s.WebAdDuration = 12
		})
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "video", body["source"])
		assert.Equal(t, float64(12), body["duration"])
		assert.Equal(t, "https://cdn.example.com/spot.mp4", body["url"])
	})

	t.Run("admob wins over web when active", func(t *testing.T) {
		updateSettings(t, env, func(s *domain.AppSettings) {
			s.AdMobActive = true
			s.AdMobRewardID = "ca-app-pub-test/reward"
		})
		// Browser client gets the fixed-length stand-in
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "admob_sim", body["source"])
		assert.Equal(t, float64(3), body["duration"])

		// Native client announces the bridge and shows the real ad itself
		w = env.request(t, http.MethodPost, "/ads/start", token, map[string]any{"native_bridge": true})
		require.Equal(t, http.StatusOK, w.Code)
		body = decode(t, w)
		assert.Equal(t, "admob", body["source"])
		assert.Equal(t, float64(0), body["duration"])
		assert.Equal(t, "ca-app-pub-test/reward", body["admob_reward_id"])

		updateSettings(t, env, func(s *domain.AppSettings) { s.AdMobActive = false })
	})

	t.Run("no source configured", func(t *testing.T) {
		updateSettings(t, env, func(s *domain.AppSettings) {
			s.WebAdActive = false
			s.AdMobActive = false
		})
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		updateSettings(t, env, func(s *domain.AppSettings) { s.WebAdActive = true })
	})

	t.Run("earning disabled", func(t *testing.T) {
		updateSettings(t, env, func(s *domain.AppSettings) { s.ShowEarn = false })
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Earning is currently disabled", decode(t, w)["error"])
		updateSettings(t, env, func(s *domain.AppSettings) { s.ShowEarn = true })
	})

	t.Run("cooling down", func(t *testing.T) {
		require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("last_ad_at", time.Now().UnixMilli()).Error)
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		body := decode(t, w)
		assert.Greater(t, body["cooldown_remaining"], float64(0))
		require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("last_ad_at", 0).Error)
	})

	t.Run("locked out", func(t *testing.T) {
		require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", user.ID).
			Updates(map[string]any{"ads_count": 20, "limit_reached_at": time.Now().UnixMilli()}).Error)
		w := env.request(t, http.MethodPost, "/ads/start", token, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Daily ad limit reached", body["error"])
		assert.NotEmpty(t, body["reset_countdown"])
	})
}

func TestClaimReward(t *testing.T) {
	env := newTestEnv(t)

	t.Run("credits the reward and advances the counter", func(t *testing.T) {
		user, token := env.createUser(t, "claimer@example.com", 0, "user")
		adToken, err := utils.GenerateAdClaimToken(user.ID, 0, testSecret)
		require.NoError(t, err)

		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": adToken})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, float64(5), body["reward"])
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, float64(10), body["cooldown"])

		fresh := env.reload(t, user.ID)
		assert.Equal(t, float64(5), fresh.Balance)
		assert.Equal(t, float64(5), fresh.TotalEarned)
		assert.Equal(t, 1, fresh.TotalAdsWatched)
		assert.Equal(t, 1, fresh.AdsCount)
		assert.NotZero(t, fresh.LastAdAt)
		assert.Nil(t, fresh.LimitReachedAt)
	})

	t.Run("final ad of the day stamps the lockout", func(t *testing.T) {
		user, token := env.createUser(t, "lastone@example.com", 0, "user")
		require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("ads_count", 19).Error)

		adToken, err := utils.GenerateAdClaimToken(user.ID, 0, testSecret)
		require.NoError(t, err)
		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": adToken})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, float64(20), body["count"])
		assert.Equal(t, true, body["locked"])
		assert.NotEmpty(t, body["reset_countdown"])

		fresh := env.reload(t, user.ID)
		require.NotNil(t, fresh.LimitReachedAt)
		assert.Equal(t, 20, fresh.AdsCount)

		// Both starting and claiming are refused until the window resets
		w = env.request(t, http.MethodPost, "/ads/start", token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		adToken, err = utils.GenerateAdClaimToken(user.ID, 0, testSecret)
		require.NoError(t, err)
		w = env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": adToken})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("second claim within the cooldown is refused", func(t *testing.T) {
		user, token := env.createUser(t, "hoarder@example.com", 0, "user")
		// Starting an ad records nothing, so several tokens can be minted
		// up front; the cooldown gate on the claim itself must hold
		first, err := utils.GenerateAdClaimToken(user.ID, 0, testSecret)
		require.NoError(t, err)
		second, err := utils.GenerateAdClaimToken(user.ID, 0, testSecret)
		require.NoError(t, err)

		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": first})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": second})
		require.Equal(t, http.StatusTooManyRequests, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "Please wait before the next ad", body["error"])
		assert.Greater(t, body["cooldown_remaining"], float64(0))

		// Exactly one reward landed
		fresh := env.reload(t, user.ID)
		assert.Equal(t, float64(5), fresh.Balance)
		assert.Equal(t, 1, fresh.AdsCount)
		assert.Equal(t, 1, fresh.TotalAdsWatched)
	})

	t.Run("token from another account is refused", func(t *testing.T) {
		_, token := env.createUser(t, "victim@example.com", 0, "user")
		stranger, _ := env.createUser(t, "stranger@example.com", 0, "user")
		adToken, err := utils.GenerateAdClaimToken(stranger.ID, 0, testSecret)
		require.NoError(t, err)

		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": adToken})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Claim token belongs to another account", decode(t, w)["error"])
	})

	t.Run("garbage token is refused", func(t *testing.T) {
		_, token := env.createUser(t, "garbage@example.com", 0, "user")
		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": "not-a-jwt"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("session token cannot claim", func(t *testing.T) {
		_, token := env.createUser(t, "wrongkind@example.com", 0, "user")
		w := env.request(t, http.MethodPost, "/ads/claim", token, map[string]any{"ad_token": token})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLockoutLazyReset(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "expired@example.com", 0, "user")
	stale := time.Now().Add(-25 * time.Hour).UnixMilli()
	require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"ads_count": 20, "limit_reached_at": stale}).Error)

	// Reading the status after the window elapsed clears the counter
	w := env.request(t, http.MethodGet, "/ads/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["locked"])
	assert.Equal(t, float64(0), body["count"])

	fresh := env.reload(t, user.ID)
	assert.Equal(t, 0, fresh.AdsCount)
	assert.Nil(t, fresh.LimitReachedAt)
}
