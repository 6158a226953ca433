package domain

// Review statuses shared by orders and deposits
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// Order Model. The offer fields are a snapshot taken at purchase time so
// later catalog edits cannot change what was bought or what a refund owes.
type Order struct {
	ID         string  `gorm:"primaryKey" json:"id"`                   // Random order id
	UserID     uint    `gorm:"index;not null" json:"user_id"`          // Owning user
	OfferID    uint    `json:"offer_id"`                               // Catalog id at purchase time
	OfferKind  string  `json:"offer_kind"`                             // Offer kind snapshot
	OfferName  string  `json:"offer_name"`                             // Offer name snapshot
	Diamonds   int     `json:"diamonds"`                               // Diamond count snapshot
	Price      float64 `gorm:"not null" json:"price"`                  // Price debited, refunded if the order fails
	Identifier string  `gorm:"not null" json:"identifier"`             // Game uid or email submitted by the buyer
	Status     string  `gorm:"index;default:Pending" json:"status"`    // Pending, Completed or Failed
	CreatedAt  int64   `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
