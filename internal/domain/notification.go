package domain

// Notification Model. Notifications are global; "unread" is derived
// client-side from a locally stored last-read timestamp.
type Notification struct {
	ID        uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	Title     string `gorm:"not null" json:"title"`                  // Short headline
	Message   string `json:"message"`                                // Body text
	Type      string `gorm:"default:system" json:"type"`             // bonus, offer or system
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
