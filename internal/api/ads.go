package api

import (
	"context"  // Context for Redis operations
	"fmt"      // Countdown formatting
	"net/http" // HTTP status codes
	"strings"  // URL extension checks
	"time"     // Cooldown and lockout math

	"topup_store/internal/domain"     // Importing domain models
	"topup_store/internal/middleware" // Current user accessor
	"topup_store/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Ad sources handed to the client by StartAdHandler
const (
	AdSourceVideo    = "video"     // Literal video file, plays its natural duration
	AdSourceWeb      = "web"       // Embedded page shown for a fixed duration
	AdSourceSim      = "simulated" // Source active but no URL configured, short free grant
	AdSourceAdMob    = "admob"     // Native rewarded ad, delegated to the host app
	AdSourceAdMobSim = "admob_sim" // Browser stand-in when no native bridge exists
)

// videoExtensions mark URLs that should play as a literal video element
var videoExtensions = []string{".mp4", ".webm", ".ogg", ".mov"}

// ClaimRequest carries the claim token issued by StartAdHandler
type ClaimRequest struct {
	AdToken string `json:"ad_token" binding:"required"`
}

// StartAdRequest lets native builds announce the AdMob bridge
type StartAdRequest struct {
	NativeBridge bool `json:"native_bridge"` // True when the host app can show real AdMob ads
}

// earnRules reads the ad-earning settings, falling back to the defaults the
// storefront shipped with when no settings row exists
func earnRules(db *gorm.DB) domain.AppSettings {
	var s domain.AppSettings
	if err := db.First(&s, 1).Error; err != nil {
		s = domain.AppSettings{
			ShowEarn:          true,
			DailyAdLimit:      20,
			RewardPerAd:       5,
			AdCooldownSeconds: 10,
			ResetHours:        24,
			WebAdActive:       true,
			WebAdDuration:     15,
		}
	}
	if s.DailyAdLimit <= 0 {
		s.DailyAdLimit = 20
	}
	if s.AdCooldownSeconds < 0 {
		s.AdCooldownSeconds = 0
	}
	if s.ResetHours <= 0 {
		s.ResetHours = 24
	}
	if s.WebAdDuration <= 0 {
		s.WebAdDuration = 15
	}
	return s
}

// lockoutRemaining returns how long until a locked user resets, zero if the
// lockout already expired or no lockout is active
func lockoutRemaining(user *domain.User, resetHours int, now time.Time) time.Duration {
	if user.LimitReachedAt == nil {
		return 0
	}
	expiry := time.UnixMilli(*user.LimitReachedAt).Add(time.Duration(resetHours) * time.Hour)
	if remaining := expiry.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// cooldownRemaining returns how long until the next ad may start
func cooldownRemaining(user *domain.User, cooldownSeconds int, now time.Time) time.Duration {
	if user.LastAdAt == 0 {
		return 0
	}
	next := time.UnixMilli(user.LastAdAt).Add(time.Duration(cooldownSeconds) * time.Second)
	if remaining := next.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// formatCountdown renders a remaining duration as "3h 12m 45s"
func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// clearExpiredLockout resets the daily counter once the lockout has run its
// course. Returns true if a reset was applied.
func clearExpiredLockout(db *gorm.DB, user *domain.User, resetHours int, now time.Time) bool {
	if user.LimitReachedAt == nil || lockoutRemaining(user, resetHours, now) > 0 {
		return false
	}
	if err := db.Model(user).Updates(map[string]any{
		"ads_count":        0,
		"limit_reached_at": nil,
	}).Error; err != nil {
		return false
	}
	user.AdsCount = 0
	user.LimitReachedAt = nil
	return true
}

// AdStatusHandler reports the watcher's current state: progress, cooldown
// and lockout countdown. An expired lockout is cleared on read, the same
// lazy reset the original client ran on a one-second timer.
func AdStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		rules := earnRules(db)
		now := time.Now()
		if clearExpiredLockout(db, user, rules.ResetHours, now) {
			utils.InvalidateUserCache(context.Background(), rdb, user.ID)
		}
		locked := user.LimitReachedAt != nil
		resp := gin.H{
			"earn_enabled":       rules.ShowEarn,
			"count":              user.AdsCount,
			"daily_limit":        rules.DailyAdLimit,
			"reward_per_ad":      rules.RewardPerAd,
			"cooldown_remaining": int(cooldownRemaining(user, rules.AdCooldownSeconds, now).Seconds()),
			"locked":             locked,
			"total_ads_watched":  user.TotalAdsWatched,
			"total_earned":       user.TotalEarned,
		}
		if locked {
			remaining := lockoutRemaining(user, rules.ResetHours, now)
			resp["reset_remaining"] = int(remaining.Seconds())
			resp["reset_countdown"] = formatCountdown(remaining)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// StartAdHandler picks an ad source and issues a claim token that only
// becomes valid after the ad's duration has elapsed. Refused while locked
// or cooling down; exactly one source plays per start.
func StartAdHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req StartAdRequest
		_ = c.ShouldBindJSON(&req) // Body is optional; browsers send none
		rules := earnRules(db)
		if !rules.ShowEarn {
			c.JSON(http.StatusForbidden, gin.H{"error": "Earning is currently disabled"})
			return
		}
		now := time.Now()
		clearExpiredLockout(db, user, rules.ResetHours, now)
		// Locked until the reset window elapses
		if remaining := lockoutRemaining(user, rules.ResetHours, now); remaining > 0 {
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "Daily ad limit reached",
				"reset_remaining": int(remaining.Seconds()),
				"reset_countdown": formatCountdown(remaining),
			})
			return
		}
		if user.AdsCount >= rules.DailyAdLimit {
			// Counter full but no stamp yet; nothing to watch until it resets
			c.JSON(http.StatusForbidden, gin.H{"error": "Daily ad limit reached"})
			return
		}
		// Still cooling down from the previous ad
		if remaining := cooldownRemaining(user, rules.AdCooldownSeconds, now); remaining > 0 {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":              "Please wait before the next ad",
				"cooldown_remaining": int(remaining.Seconds()),
			})
			return
		}
		// Source selection: AdMob wins when active, then web ads
		var (
			source   string
			duration int
			resp     = gin.H{}
		)
		switch {
		case rules.AdMobActive:
			if req.NativeBridge {
				// The host app shows the real rewarded ad itself
				source = AdSourceAdMob
				duration = 0
				resp["admob_app_id"] = rules.AdMobAppID
				resp["admob_reward_id"] = rules.AdMobRewardID
			} else {
				// Browser stand-in: fixed-length overlay then auto-grant
				source = AdSourceAdMobSim
				duration = 3
				resp["admob_reward_id"] = rules.AdMobRewardID
			}
		case rules.WebAdActive:
			url := strings.TrimSpace(rules.WebAdURL)
			switch {
			case url == "":
				// Active but unconfigured: deliberate short free grant
				source = AdSourceSim
				duration = 2
			case hasVideoExtension(url):
				source = AdSourceVideo
				duration = rules.WebAdDuration
				resp["url"] = url
			default:
				source = AdSourceWeb
				duration = rules.WebAdDuration
				resp["url"] = url
			}
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No ads available right now. Please contact admin."})
			return
		}
		token, err := utils.GenerateAdClaimToken(user.ID, time.Duration(duration)*time.Second, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue claim token"})
			return
		}
		resp["source"] = source
		resp["duration"] = duration
		resp["reward"] = rules.RewardPerAd
		resp["ad_token"] = token
		c.JSON(http.StatusOK, resp)
	}
}

// hasVideoExtension reports whether the URL points at a literal video file
func hasVideoExtension(url string) bool {
	// Ignore any query string when checking the extension
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	url = strings.ToLower(url)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// ClaimRewardHandler credits one completed ad. The claim token's NotBefore
// proves the ad's duration elapsed; the conditional update pins the counter
// the claim was computed from, so a replayed or concurrent claim changes
// nothing. Hitting the daily limit stamps the lockout instead of starting a
// cooldown.
func ClaimRewardHandler(db *gorm.DB, rdb *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c) // Loaded by ActiveUserMiddleware
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ClaimRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		claims, err := utils.ParseJWT(req.AdToken, jwtSecret, "ad_claim")
		if err != nil {
			// Covers tampered tokens, expired rewards and claims before the
			// ad could have finished (NotBefore still in the future)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or premature claim"})
			return
		}
		if claims.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Claim token belongs to another account"})
			return
		}
		rules := earnRules(db)
		now := time.Now()
		clearExpiredLockout(db, user, rules.ResetHours, now)
		// Re-check the gates the start endpoint enforced. Starting an ad
		// records no state, so without this a user could mint several claim
		// tokens up front and redeem them back-to-back.
		if user.LimitReachedAt != nil || user.AdsCount >= rules.DailyAdLimit {
			c.JSON(http.StatusForbidden, gin.H{"error": "Daily ad limit reached"})
			return
		}
		if remaining := cooldownRemaining(user, rules.AdCooldownSeconds, now); remaining > 0 {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":              "Please wait before the next ad",
				"cooldown_remaining": int(remaining.Seconds()),
			})
			return
		}
		newCount := user.AdsCount + 1
		updates := map[string]any{
			"balance":           gorm.Expr("balance + ?", rules.RewardPerAd),
			"total_earned":      gorm.Expr("total_earned + ?", rules.RewardPerAd),
			"total_ads_watched": gorm.Expr("total_ads_watched + ?", 1),
			"ads_count":         newCount,
			"last_ad_at":        now.UnixMilli(),
		}
		if newCount >= rules.DailyAdLimit {
			updates["limit_reached_at"] = now.UnixMilli() // Daily limit hit, start the lockout
		}
		// Guard on the counter value this claim was computed from
		res := db.Model(&domain.User{}).
			Where("id = ? AND ads_count = ?", user.ID, user.AdsCount).
			Updates(updates)
		if res.Error != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   res.Error.Error(),
			}).Error("Reward claim failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply reward"})
			return
		}
		if res.RowsAffected == 0 {
			// Another claim landed between our read and write
			c.JSON(http.StatusConflict, gin.H{"error": "Reward already claimed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,           // Watcher
			"reward":    rules.RewardPerAd, // Credit applied
			"count":     newCount,          // Ads in the current window
			"type":      "ad_reward",       // Transaction type
			"timestamp": now.Format(time.RFC3339),
		}).Info("Ad reward claimed")
		utils.InvalidateUserCache(context.Background(), rdb, user.ID) // Balance changed
		resp := gin.H{
			"message":     "Reward credited",
			"reward":      rules.RewardPerAd,
			"count":       newCount,
			"daily_limit": rules.DailyAdLimit,
		}
		if newCount >= rules.DailyAdLimit {
			resp["locked"] = true
			resp["reset_countdown"] = formatCountdown(time.Duration(rules.ResetHours) * time.Hour)
		} else {
			resp["cooldown"] = rules.AdCooldownSeconds // Next ad after this many seconds
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListAdUnitsHandler returns active injectable ad units. Payloads are
// admin-authored; the client isolates them in a sandboxed iframe.
func ListAdUnitsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var units []domain.AdUnit
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyAdUnits, &units)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"ad_units": units, "cached": true})
			return
		}
		if err := db.Where("active = ?", true).Find(&units).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ad units"})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyAdUnits, units, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"ad_units": units, "cached": false})
	}
}
