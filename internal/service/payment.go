package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/payment"
	"paywin/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentService runs provider top-ups
type PaymentService struct {
	store    repository.Store
	cache    cache.Cache
	provider payment.Provider
	settings Settings
	now      func() time.Time
}

func NewPaymentService(store repository.Store, c cache.Cache, provider payment.Provider, s Settings) *PaymentService {
	return &PaymentService{store: store, cache: c, provider: provider, settings: s, now: time.Now}
}

// Initiate records a pending payment and asks the provider for a checkout
// page. A provider failure marks the payment failed.
func (s *PaymentService) Initiate(ctx context.Context, userID uint, amount int64) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.Profiles().Get(ctx, userID); err != nil {
		return nil, err
	}
	p := &domain.Payment{
		UserID: userID,
		Token:  uuid.NewString(),
		Amount: amount,
		Status: domain.PaymentPending,
	}
	if err := s.store.Payments().Create(ctx, p); err != nil {
		return nil, err
	}

	checkout, err := s.provider.Initiate(ctx, payment.InitiateRequest{
		Amount:      amount,
		Currency:    s.settings.Currency,
		Reference:   p.Token,
		CallbackURL: s.settings.CallbackURL,
	})
	if err != nil {
		p.Status = domain.PaymentFailed
		if saveErr := s.store.Payments().Save(context.WithoutCancel(ctx), p); saveErr != nil {
			logrus.WithError(saveErr).WithField("token", p.Token).Error("Failed to mark payment failed")
		}
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	p.ProviderRef = checkout.ID
	p.RedirectURL = checkout.RedirectURL
	if err := s.store.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "token": p.Token, "amount": amount}).Info("Payment initiated")
	return p, nil
}

// HandleWebhook verifies a provider callback and settles the payment. The
// payment row is locked by token, so a repeated callback credits nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.Payment, error) {
	if err := payment.Verify(body, signature, s.settings.WebhookSecret); err != nil {
		return nil, err
	}
	var hook payment.Webhook
	if err := json.Unmarshal(body, &hook); err != nil || hook.Token == "" {
		return nil, fmt.Errorf("%w: webhook payload", ErrInvalidInput)
	}

	var out *domain.Payment
	credited := false
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := tx.Payments().GetByTokenForUpdate(ctx, hook.Token)
		if err != nil {
			return notFound(err, ErrPaymentNotFound)
		}
		out = p
		// completed is the only state that blocks a credit
		if p.Status == domain.PaymentCompleted {
			return nil
		}
		switch {
		case hookSucceeded(hook.Status):
		case hookFailed(hook.Status):
			if p.Status != domain.PaymentPending {
				return nil
			}
			if hook.ProviderRef != "" {
				p.ProviderRef = hook.ProviderRef
			}
			p.Status = domain.PaymentFailed
			return tx.Payments().Save(ctx, p)
		default:
			// interim states such as processing leave the row as is
			return nil
		}
		if hook.Amount != 0 && hook.Amount != p.Amount {
			return ErrAmountMismatch
		}

		profile, err := tx.Profiles().GetForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		profile.Balance += p.Amount
		if err := tx.Profiles().Save(ctx, profile); err != nil {
			return err
		}
		err = tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       profile.ID,
			Type:         domain.TxDeposit,
			Amount:       p.Amount,
			BalanceAfter: profile.Balance,
			Description:  "Deposit token " + p.Token,
			Status:       domain.TxStatusCompleted,
			Reference:    p.Token,
		})
		if err != nil {
			return err
		}
		if hook.ProviderRef != "" {
			p.ProviderRef = hook.ProviderRef
		}
		p.Status = domain.PaymentCompleted
		credited = true
		return tx.Payments().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if credited {
		invalidate(ctx, s.cache, out.UserID)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  out.UserID,
		"token":    out.Token,
		"status":   out.Status,
		"credited": credited,
	}).Info("Payment webhook processed")
	return out, nil
}

func hookSucceeded(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "success":
		return true
	}
	return false
}

func hookFailed(status string) bool {
	switch strings.ToLower(status) {
	case "failed", "cancelled", "canceled", "declined", "rejected", "expired":
		return true
	}
	return false
}

// ExpirePending marks payments left pending for longer than ttl as expired.
// A completed callback arriving later still credits them.
func (s *PaymentService) ExpirePending(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.store.Payments().ExpirePending(ctx, s.now().Add(-ttl))
}
