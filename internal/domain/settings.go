package domain

// AppSettings is a singleton row (id 1) holding storefront configuration:
// branding, maintenance mode, per-tab visibility, deposit bounds and the
// ad-earning rule set.
type AppSettings struct {
	ID              uint   `gorm:"primaryKey" json:"-"`
	AppName         string `gorm:"default:Top-Up Store" json:"app_name"`
	MaintenanceMode bool   `gorm:"default:false" json:"maintenance_mode"`
	Notice          string `json:"notice"` // Shown to users while maintenance is on
	LogoURL         string `json:"logo_url"`

	// Per-feature visibility toggles
	ShowDiamonds   bool `gorm:"default:true" json:"show_diamonds"`
	ShowLevelUp    bool `gorm:"default:true" json:"show_level_up"`
	ShowMembership bool `gorm:"default:true" json:"show_membership"`
	ShowPremium    bool `gorm:"default:true" json:"show_premium"`
	ShowEarn       bool `gorm:"default:true" json:"show_earn"`

	// Deposit bounds
	DepositMin float64 `gorm:"default:20" json:"deposit_min"`
	DepositMax float64 `gorm:"default:10000" json:"deposit_max"`

	// Ad-earning rules
	DailyAdLimit      int     `gorm:"default:20" json:"daily_ad_limit"`      // Max rewarded ads per window
	RewardPerAd       float64 `gorm:"default:5" json:"reward_per_ad"`        // Credit per completed ad
	AdCooldownSeconds int     `gorm:"default:10" json:"ad_cooldown_seconds"` // Minimum wait between ads
	ResetHours        int     `gorm:"default:24" json:"reset_hours"`         // Lockout duration after the daily limit

	// Web ad source
	WebAdActive   bool   `gorm:"default:true" json:"web_ad_active"`
	WebAdURL      string `json:"web_ad_url"`                        // Video or page URL; empty means simulated grant
	WebAdDuration int    `gorm:"default:15" json:"web_ad_duration"` // Watch time in seconds for embedded pages

	// AdMob source (native wrapper builds)
	AdMobActive         bool   `gorm:"default:false" json:"admob_active"`
	AdMobAppID          string `json:"admob_app_id"`
	AdMobRewardID       string `json:"admob_reward_id"`
	AdMobInterstitialID string `json:"admob_interstitial_id"`
	AdMobBannerID       string `json:"admob_banner_id"`
}
