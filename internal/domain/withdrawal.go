package domain

import "time"

// Withdrawal statuses
const (
	WithdrawalPending    = "pending"
	WithdrawalProcessing = "processing"
	WithdrawalCompleted  = "completed"
	WithdrawalRejected   = "rejected"
)

// Withdrawal Model
type Withdrawal struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Amount         int64     `gorm:"not null" json:"amount"`
	PaymentMethod  string    `gorm:"size:32;not null" json:"payment_method"`
	PaymentAddress string    `gorm:"size:128;not null" json:"payment_address"`
	Status         string    `gorm:"size:16;index;default:pending" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Final reports whether no further status change is allowed
func (w *Withdrawal) Final() bool {
	return w.Status == WithdrawalCompleted || w.Status == WithdrawalRejected
}
