package domain

// User Model
type User struct {
	ID              uint    `gorm:"primaryKey" json:"id"`                   // Primary key
	Name            string  `gorm:"not null" json:"name"`                   // Display name
	Email           string  `gorm:"unique;not null" json:"email"`           // Unique login email
	Password        string  `gorm:"not null" json:"-"`                      // Hashed password, never serialized
	Role            string  `gorm:"default:user" json:"role"`               // Role: user or admin
	Balance         float64 `gorm:"not null;default:0" json:"balance"`      // Wallet balance
	PlayerUID       string  `json:"player_uid"`                             // In-game player id, digits only
	AvatarURL       string  `json:"avatar_url"`                             // Avatar image URL
	TotalAdsWatched int     `gorm:"default:0" json:"total_ads_watched"`     // Lifetime rewarded ads
	TotalEarned     float64 `gorm:"default:0" json:"total_earned"`          // Lifetime ad earnings
	IsBanned        bool    `gorm:"default:false" json:"is_banned"`         // Banned accounts cannot act
	AdsCount        int     `gorm:"default:0" json:"ads_count"`             // Rewarded ads in the current window
	LastAdAt        int64   `json:"last_ad_at"`                             // Unix ms of the last claimed ad
	LimitReachedAt  *int64  `json:"limit_reached_at"`                       // Unix ms when the daily limit was hit, nil while unlocked
	CreatedAt       int64   `gorm:"autoCreateTime:milli" json:"created_at"` // Signup timestamp in milliseconds
}
