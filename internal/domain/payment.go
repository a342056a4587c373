package domain

import "time"

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentExpired   = "expired" // No callback within the TTL; a late completion still credits
)

// Payment tracks a provider top-up from initiation to webhook
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Token       string    `gorm:"size:36;uniqueIndex;not null" json:"token"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Status      string    `gorm:"size:16;index;default:pending" json:"status"`
	ProviderRef string    `gorm:"size:128" json:"provider_ref,omitempty"`
	RedirectURL string    `gorm:"size:512" json:"redirect_url,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
