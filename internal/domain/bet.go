package domain

import "time"

// Bet results
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultPush = "push"
)

// BetHistoryEntry Model
type BetHistoryEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	GameName   string    `gorm:"size:32;index;not null" json:"game_name"`
	BetAmount  int64     `gorm:"not null" json:"bet_amount"`
	WinAmount  int64     `gorm:"not null" json:"win_amount"`
	Multiplier float64   `json:"multiplier"`
	Result     string    `gorm:"size:8" json:"result"`
	Forced     bool      `json:"forced"` // House policy changed the natural outcome
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
