package domain

// Deposit Model. The primary key is the user-submitted transaction id,
// upper-cased, so a reference can only be claimed once.
type Deposit struct {
	ID        string  `gorm:"primaryKey" json:"id"`                   // Upper-cased payment transaction id
	UserID    uint    `gorm:"index;not null" json:"user_id"`          // Owning user
	Amount    float64 `gorm:"not null" json:"amount"`                 // Claimed amount, credited on approval
	Method    string  `gorm:"not null" json:"method"`                 // Payment method name
	Status    string  `gorm:"index;default:Pending" json:"status"`    // Pending, Completed or Failed
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
