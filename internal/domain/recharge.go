package domain

import "time"

// RechargeCode is a single-use credit token
type RechargeCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Amount    int64      `gorm:"not null" json:"amount"`
	IsUsed    bool       `gorm:"not null;default:false" json:"is_used"`
	UsedBy    *uint      `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
