package domain

import "time"

// Mine round statuses
const (
	RoundActive    = "active"
	RoundBusted    = "busted"
	RoundCashedOut = "cashed_out"
	RoundExpired   = "expired"
)

// MineRound is the server side state of a mines game
type MineRound struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Variant    string    `gorm:"size:16;not null" json:"variant"`
	BetAmount  int64     `gorm:"not null" json:"bet_amount"`
	Bombs      int       `gorm:"not null" json:"bombs"`
	BombCells  []int     `gorm:"serializer:json" json:"-"`
	Revealed   []int     `gorm:"serializer:json" json:"revealed"`
	Status     string    `gorm:"size:16;index;not null" json:"status"`
	Multiplier float64   `json:"multiplier"`
	WinAmount  int64     `json:"win_amount"`
	Commitment string    `gorm:"size:64" json:"commitment,omitempty"`
	Salt       string    `gorm:"size:64" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
}

// Active reports whether the round still accepts reveals
func (r *MineRound) Active() bool {
	return r.Status == RoundActive
}
