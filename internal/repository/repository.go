// Package repository defines storage access for every PAYWIN aggregate.
package repository

import (
	"context"
	"errors"
	"time"

	"paywin/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Page selects a window of a listing
type Page struct {
	Offset int
	Limit  int
}

// TransactionFilter narrows the admin transaction listing
type TransactionFilter struct {
	UserID uint
	Type   domain.TransactionType
	From   *time.Time
	To     *time.Time
}

type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, id uint) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// GetForUpdate locks the row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uint) (*domain.Profile, error)
	Save(ctx context.Context, p *domain.Profile) error
	Top(ctx context.Context, limit int) ([]domain.Profile, error)
	List(ctx context.Context, page Page) ([]domain.Profile, int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	List(ctx context.Context, filter TransactionFilter, page Page) ([]domain.Transaction, int64, error)
	// SetStatus updates the user's rows of one type carrying reference
	SetStatus(ctx context.Context, userID uint, typ domain.TransactionType, reference, status string) (int64, error)
}

type BetRepository interface {
	Create(ctx context.Context, b *domain.BetHistoryEntry) error
	ListByUser(ctx context.Context, userID uint, page Page) ([]domain.BetHistoryEntry, int64, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetForUpdate(ctx context.Context, id uint) (*domain.Withdrawal, error)
	Save(ctx context.Context, w *domain.Withdrawal) error
	ListByUser(ctx context.Context, userID uint) ([]domain.Withdrawal, error)
}

type RechargeCodeRepository interface {
	Create(ctx context.Context, c *domain.RechargeCode) error
	GetForUpdate(ctx context.Context, code string) (*domain.RechargeCode, error)
	Save(ctx context.Context, c *domain.RechargeCode) error
}

type MineRoundRepository interface {
	Create(ctx context.Context, r *domain.MineRound) error
	GetForUpdate(ctx context.Context, id string) (*domain.MineRound, error)
	Save(ctx context.Context, r *domain.MineRound) error
	ActiveByUser(ctx context.Context, userID uint) ([]domain.MineRound, error)
	// StaleIDs lists active rounds not touched since before
	StaleIDs(ctx context.Context, before time.Time) ([]string, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByTokenForUpdate(ctx context.Context, token string) (*domain.Payment, error)
	Save(ctx context.Context, p *domain.Payment) error
	// ExpirePending marks pending payments created before the cutoff as expired
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, id uint) (*domain.Post, error)
	List(ctx context.Context, page Page) ([]domain.Post, int64, error)
	// ToggleLike adds or removes the user's like and returns the new state
	ToggleLike(ctx context.Context, postID, userID uint) (bool, error)
	AddComment(ctx context.Context, c *domain.PostComment) error
	Comments(ctx context.Context, postID uint, page Page) ([]domain.PostComment, error)
}

// Tx exposes every repository bound to one unit of work
type Tx interface {
	Profiles() ProfileRepository
	Transactions() TransactionRepository
	Bets() BetRepository
	Withdrawals() WithdrawalRepository
	RechargeCodes() RechargeCodeRepository
	MineRounds() MineRoundRepository
	Payments() PaymentRepository
	Posts() PostRepository
}

// Store is the entry point of the storage layer. Calls made directly on the
// store run outside any transaction; Atomic commits fn's work or none of it.
type Store interface {
	Tx
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
