package domain

// Offer kinds, one per storefront tab
const (
	OfferDiamond    = "diamond"
	OfferLevelUp    = "levelup"
	OfferMembership = "membership"
	OfferPremium    = "premium"
)

// Identifier collected from the buyer at purchase time
const (
	InputUID   = "uid"   // In-game player id
	InputEmail = "email" // Delivery email (premium apps)
)

// Offer Model
type Offer struct {
	ID          uint    `gorm:"primaryKey" json:"id"`          // Primary key
	Kind        string  `gorm:"index;not null" json:"kind"`    // diamond, levelup, membership or premium
	Name        string  `gorm:"not null" json:"name"`          // Display name
	Diamonds    int     `json:"diamonds"`                      // Diamond count, diamond offers only
	Price       float64 `gorm:"not null" json:"price"`         // Price in wallet currency
	Description string  `json:"description"`                   // Optional description, premium apps
	InputType   string  `gorm:"default:uid" json:"input_type"` // uid or email
	Active      bool    `gorm:"default:true" json:"active"`    // Hidden from the storefront when false
}
