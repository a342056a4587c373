// Package service holds the PAYWIN use cases. Every balance change happens in
// one store transaction together with the ledger rows that explain it.
package service

import (
	"context"
	"errors"
	"strconv"

	"paywin/internal/cache"
	"paywin/internal/config"
	"paywin/internal/game"
	"paywin/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrCodeNotFound        = errors.New("recharge code not found")
	ErrCodeUsed            = errors.New("recharge code already used")
	ErrWithdrawalTooSmall  = errors.New("withdrawal amount is below the minimum")
	ErrWithdrawalFinal     = errors.New("withdrawal is already settled")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrRoundNotFound       = errors.New("mine round not found")
	ErrRoundInProgress     = errors.New("a mine round is already in progress")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrAmountMismatch      = errors.New("payment amount does not match")
	ErrEmptyContent        = errors.New("content is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Settings are the business knobs shared by the services
type Settings struct {
	Limits          game.Limits
	Policy          game.Policy
	VIPThreshold    int64
	StartingBalance int64
	MinWithdrawal   int64
	JWTSecret       string
	Currency        string
	CallbackURL     string
	WebhookSecret   string
}

// DefaultSettings match the production defaults
var DefaultSettings = Settings{
	Limits:        game.DefaultLimits,
	Policy:        game.DefaultPolicy,
	VIPThreshold:  50000,
	MinWithdrawal: 7000,
	Currency:      "XOF",
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Limits:          game.Limits{MinBet: cfg.MinBet, MaxBet: cfg.MaxBet, Step: cfg.BetStep},
		Policy:          game.Policy{Enabled: cfg.BiasEnabled, Ceiling: cfg.BiasCeiling, Floor: cfg.BiasFloor},
		VIPThreshold:    cfg.VIPThreshold,
		StartingBalance: cfg.StartingBalance,
		MinWithdrawal:   cfg.MinWithdrawal,
		JWTSecret:       cfg.JWTSecret,
		Currency:        cfg.PaymentCurrency,
		CallbackURL:     cfg.PaymentCallbackURL,
		WebhookSecret:   cfg.PaymentWebhookSecret,
	}
}

// Listing is one page of a longer result
type Listing[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func pageKey(page repository.Page) string {
	return strconv.Itoa(page.Offset) + ":" + strconv.Itoa(page.Limit)
}

func ref(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// invalidate drops the cached read models of the given users. Cache errors
// are logged only; the write already committed.
func invalidate(ctx context.Context, c cache.Cache, userIDs ...uint) {
	keys := []string{cache.LeaderboardKey}
	for _, id := range userIDs {
		keys = append(keys, cache.ProfileKey(id))
		if err := c.DeletePrefix(ctx, cache.HistoryPrefix(id)); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("Failed to invalidate history cache")
		}
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate profile cache")
	}
	if err := c.DeletePrefix(ctx, cache.AdminPrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate admin cache")
	}
}

// notFound maps a repository miss to a service error
func notFound(err, replacement error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return replacement
	}
	return err
}
