package domain

// PaymentMethod Model
type PaymentMethod struct {
	ID            uint   `gorm:"primaryKey" json:"id"`           // Primary key
	Name          string `gorm:"unique;not null" json:"name"`    // Method name shown in the deposit wizard
	Logo          string `json:"logo"`                           // Logo image URL
	AccountNumber string `gorm:"not null" json:"account_number"` // Receiving account the user pays into
	Instructions  string `json:"instructions"`                   // Optional payment instructions
}

// SupportContact Model
type SupportContact struct {
	ID    uint   `gorm:"primaryKey" json:"id"` // Primary key
	Type  string `gorm:"not null" json:"type"` // phone, whatsapp, telegram, email or video
	Label string `json:"label"`                // Display label
	Link  string `gorm:"not null" json:"link"` // Target link or number
}

// Banner Model
type Banner struct {
	ID       uint   `gorm:"primaryKey" json:"id"`      // Primary key
	ImageURL string `gorm:"not null" json:"image_url"` // Banner image URL
}

// AdUnit Model. Code is a raw HTML/script payload configured by a trusted
// admin; the client renders it inside a sandboxed iframe.
type AdUnit struct {
	ID     uint   `gorm:"primaryKey" json:"id"`       // Primary key
	Title  string `gorm:"not null" json:"title"`      // Admin-facing label
	Code   string `gorm:"type:text" json:"code"`      // Injectable HTML/script payload
	Active bool   `gorm:"default:true" json:"active"` // Only active units are served
}
