package service

import (
	"context"
	"fmt"
	"strings"

	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/game"
	"paywin/internal/repository"
	"paywin/internal/security"

	"github.com/sirupsen/logrus"
)

// WithdrawalService holds cash-out requests and their admin review
type WithdrawalService struct {
	store    repository.Store
	cache    cache.Cache
	settings Settings
}

func NewWithdrawalService(store repository.Store, c cache.Cache, s Settings) *WithdrawalService {
	return &WithdrawalService{store: store, cache: c, settings: s}
}

// WithdrawalRequest is what a player submits
type WithdrawalRequest struct {
	Amount         int64  `json:"amount"`
	PaymentMethod  string `json:"payment_method"`
	PaymentAddress string `json:"payment_address"`
}

// Request validates a withdrawal and holds the amount from the balance. The
// minimum amount is checked before the store is touched.
func (s *WithdrawalService) Request(ctx context.Context, userID uint, in WithdrawalRequest) (*domain.Withdrawal, error) {
	if in.Amount < s.settings.MinWithdrawal {
		return nil, ErrWithdrawalTooSmall
	}
	method := security.SanitizeText(in.PaymentMethod, 32)
	address := security.SanitizeText(in.PaymentAddress, 128)
	if method == "" || address == "" {
		return nil, fmt.Errorf("%w: payment method and address are required", ErrInvalidInput)
	}

	w := &domain.Withdrawal{
		UserID:         userID,
		Amount:         in.Amount,
		PaymentMethod:  strings.ToLower(method),
		PaymentAddress: address,
		Status:         domain.WithdrawalPending,
	}
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := tx.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if p.Balance < in.Amount {
			return game.ErrInsufficientBalance
		}
		if err := tx.Withdrawals().Create(ctx, w); err != nil {
			return err
		}
		p.Balance -= in.Amount
		if err := tx.Profiles().Save(ctx, p); err != nil {
			return err
		}
		return tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       userID,
			Type:         domain.TxWithdrawal,
			Amount:       in.Amount,
			BalanceAfter: p.Balance,
			Description:  "Withdrawal via " + w.PaymentMethod,
			Status:       domain.TxStatusPending,
			Reference:    ref(w.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, userID)
	logrus.WithFields(logrus.Fields{
		"user_id":       userID,
		"withdrawal_id": w.ID,
		"amount":        w.Amount,
		"method":        w.PaymentMethod,
	}).Info("Withdrawal requested")
	return w, nil
}

// List returns the player's withdrawals, newest first
func (s *WithdrawalService) List(ctx context.Context, userID uint) ([]domain.Withdrawal, error) {
	return s.store.Withdrawals().ListByUser(ctx, userID)
}

// UpdateStatus moves a withdrawal forward. Completing adds to the player's
// total withdrawn; rejecting refunds the held amount.
func (s *WithdrawalService) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Withdrawal, error) {
	switch status {
	case domain.WithdrawalProcessing, domain.WithdrawalCompleted, domain.WithdrawalRejected:
	default:
		return nil, ErrInvalidStatus
	}
	var w *domain.Withdrawal
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		w, err = tx.Withdrawals().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if w.Final() {
			return ErrWithdrawalFinal
		}
		if status == domain.WithdrawalProcessing {
			w.Status = status
			return tx.Withdrawals().Save(ctx, w)
		}

		p, err := tx.Profiles().GetForUpdate(ctx, w.UserID)
		if err != nil {
			return err
		}
		held := domain.TxStatusCompleted
		if status == domain.WithdrawalRejected {
			held = domain.TxStatusReversed
		}
		if _, err := tx.Transactions().SetStatus(ctx, p.ID, domain.TxWithdrawal, ref(w.ID), held); err != nil {
			return err
		}
		if status == domain.WithdrawalCompleted {
			p.TotalWithdrawn += w.Amount
		} else {
			p.Balance += w.Amount
			err := tx.Transactions().Create(ctx, &domain.Transaction{
				UserID:       p.ID,
				Type:         domain.TxWithdrawalRefund,
				Amount:       w.Amount,
				BalanceAfter: p.Balance,
				Description:  "Withdrawal rejected",
				Status:       domain.TxStatusCompleted,
				Reference:    ref(w.ID),
			})
			if err != nil {
				return err
			}
		}
		if err := tx.Profiles().Save(ctx, p); err != nil {
			return err
		}
		w.Status = status
		return tx.Withdrawals().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, w.UserID)
	logrus.WithFields(logrus.Fields{
		"user_id":       w.UserID,
		"withdrawal_id": w.ID,
		"status":        w.Status,
	}).Info("Withdrawal status updated")
	return w, nil
}
