package domain

import "time"

// TransactionType is the kind of balance movement
type TransactionType string

const (
	TxGameBet          TransactionType = "game_bet"
	TxGameWin          TransactionType = "game_win"
	TxGameLoss         TransactionType = "game_loss"
	TxRecharge         TransactionType = "recharge"
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxWithdrawalRefund TransactionType = "withdrawal_refund"
	TxTransferIn       TransactionType = "transfer_in"
	TxTransferOut      TransactionType = "transfer_out"
)

// Transaction statuses
const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
	TxStatusReversed  = "reversed" // Held amount given back, see the refund row
)

// Transaction Model
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	UserID       uint            `gorm:"index;not null" json:"user_id"`                // Owner profile
	Type         TransactionType `gorm:"size:32;index;not null" json:"type"`           // Transaction type
	Amount       int64           `gorm:"not null" json:"amount"`                       // Always positive, direction comes from Type
	BalanceAfter int64           `gorm:"not null" json:"balance_after"`                // Balance right after this movement
	Description  string          `gorm:"size:255" json:"description"`                  // Human readable label
	Status       string          `gorm:"size:16;default:completed" json:"status"`      // completed or pending
	Reference    string          `gorm:"size:64;index" json:"reference,omitempty"`     // Round, payment or withdrawal id
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

// Credit reports whether the transaction adds to the balance
func (t TransactionType) Credit() bool {
	switch t {
	case TxGameWin, TxRecharge, TxDeposit, TxWithdrawalRefund, TxTransferIn:
		return true
	}
	return false
}
