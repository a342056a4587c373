package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"paywin/internal/auth"
	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/game"
	"paywin/internal/repository"
	"paywin/internal/security"
	"paywin/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	profileTTL     = 5 * time.Minute
	historyTTL     = 2 * time.Minute
	leaderboardTTL = time.Minute
)

var avatarTypes = []string{".png", ".jpg", ".jpeg", ".webp"}

// WalletService covers accounts, balances and the ledger views
type WalletService struct {
	store    repository.Store
	cache    cache.Cache
	tokens   *auth.Tokens
	uploader storage.Uploader
	settings Settings
	now      func() time.Time
}

// NewWalletService wires the account use cases. uploader may be nil when
// object storage is not configured.
func NewWalletService(store repository.Store, c cache.Cache, tokens *auth.Tokens, uploader storage.Uploader, s Settings) *WalletService {
	return &WalletService{store: store, cache: c, tokens: tokens, uploader: uploader, settings: s, now: time.Now}
}

// Register creates a profile. A configured starting balance is credited as a
// deposit in the same transaction.
func (s *WalletService) Register(ctx context.Context, email, password, fullName string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, fmt.Errorf("%w: password must be 8-72 characters", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &domain.Profile{
		Email:    email,
		Password: hash,
		FullName: security.SanitizeText(fullName, 100),
		Role:     domain.RoleUser,
		Balance:  s.settings.StartingBalance,
	}
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.Profiles().Create(ctx, p); err != nil {
			return err
		}
		if p.Balance == 0 {
			return nil
		}
		return tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       p.ID,
			Type:         domain.TxDeposit,
			Amount:       p.Balance,
			BalanceAfter: p.Balance,
			Description:  "Welcome bonus",
			Status:       domain.TxStatusCompleted,
		})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": p.ID, "email": p.Email}).Info("Profile registered")
	return p, nil
}

// Authenticate checks credentials and returns a session token
func (s *WalletService) Authenticate(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	p, err := s.store.Profiles().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, notFound(err, ErrInvalidCredentials)
	}
	if !auth.CheckPassword(p.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(p.ID)
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}

// Profile returns the cached profile of a user
func (s *WalletService) Profile(ctx context.Context, userID uint) (*domain.Profile, error) {
	var p domain.Profile
	if found, err := s.cache.Get(ctx, cache.ProfileKey(userID), &p); err == nil && found {
		return &p, nil
	}
	fresh, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cache.ProfileKey(userID), fresh, profileTTL)
	return fresh, nil
}

// ProfileUpdate lists the editable profile fields; nil leaves a field as is
type ProfileUpdate struct {
	FullName     *string `json:"full_name"`
	FavoriteGame *string `json:"favorite_game"`
}

func (s *WalletService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*domain.Profile, error) {
	if in.FavoriteGame != nil && *in.FavoriteGame != "" {
		if _, err := game.Lookup(*in.FavoriteGame); errors.Is(err, game.ErrUnknownGame) {
			return nil, err
		}
	}
	var out *domain.Profile
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := tx.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if in.FullName != nil {
			p.FullName = security.SanitizeText(*in.FullName, 100)
		}
		if in.FavoriteGame != nil {
			p.FavoriteGame = *in.FavoriteGame
		}
		out = p
		return tx.Profiles().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, userID)
	return out, nil
}

// SetAvatar uploads a picture and stores its public URL on the profile
func (s *WalletService) SetAvatar(ctx context.Context, userID uint, filename, contentType string, body io.Reader) (*domain.Profile, error) {
	if s.uploader == nil {
		return nil, storage.ErrDisabled
	}
	if !security.ValidateFileType(filename, avatarTypes) {
		return nil, ErrUnsupportedFileType
	}
	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	var out *domain.Profile
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := tx.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		p.AvatarURL = url
		out = p
		return tx.Profiles().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, userID)
	return out, nil
}

// TransferResult is the sender's view of a completed transfer
type TransferResult struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
}

// Transfer moves credit to another player by email. Both rows are locked in
// ascending id order.
func (s *WalletService) Transfer(ctx context.Context, fromID uint, toEmail string, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	reference := uuid.NewString()
	var res TransferResult
	var toID uint
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		to, err := tx.Profiles().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(toEmail)))
		if err != nil {
			return notFound(err, ErrRecipientNotFound)
		}
		if to.ID == fromID {
			return ErrSelfTransfer
		}
		toID = to.ID

		first, second := fromID, toID
		if second < first {
			first, second = second, first
		}
		locked := map[uint]*domain.Profile{}
		for _, id := range []uint{first, second} {
			p, err := tx.Profiles().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			locked[id] = p
		}
		sender, recipient := locked[fromID], locked[toID]
		if sender.Balance < amount {
			return game.ErrInsufficientBalance
		}

		sender.Balance -= amount
		recipient.Balance += amount
		for _, p := range []*domain.Profile{sender, recipient} {
			if err := tx.Profiles().Save(ctx, p); err != nil {
				return err
			}
		}
		rows := []*domain.Transaction{
			{UserID: sender.ID, Type: domain.TxTransferOut, Amount: amount, BalanceAfter: sender.Balance, Description: "Transfer to " + recipient.Email, Reference: reference},
			{UserID: recipient.ID, Type: domain.TxTransferIn, Amount: amount, BalanceAfter: recipient.Balance, Description: "Transfer from " + sender.Email, Reference: reference},
		}
		for _, t := range rows {
			t.Status = domain.TxStatusCompleted
			if err := tx.Transactions().Create(ctx, t); err != nil {
				return err
			}
		}
		res = TransferResult{Reference: reference, Amount: amount, Balance: sender.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, fromID, toID)
	logrus.WithFields(logrus.Fields{
		"from_user_id": fromID,
		"to_user_id":   toID,
		"amount":       amount,
		"reference":    reference,
	}).Info("Transfer transaction")
	return &res, nil
}

// RedeemCode credits a single-use recharge code
func (s *WalletService) RedeemCode(ctx context.Context, userID uint, code string) (*domain.Transaction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeNotFound
	}
	var out *domain.Transaction
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		rc, err := tx.RechargeCodes().GetForUpdate(ctx, code)
		if err != nil {
			return notFound(err, ErrCodeNotFound)
		}
		if rc.IsUsed {
			return ErrCodeUsed
		}
		p, err := tx.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		rc.IsUsed, rc.UsedBy, rc.UsedAt = true, &userID, &now
		if err := tx.RechargeCodes().Save(ctx, rc); err != nil {
			return err
		}
		p.Balance += rc.Amount
		if err := tx.Profiles().Save(ctx, p); err != nil {
			return err
		}
		out = &domain.Transaction{
			UserID:       userID,
			Type:         domain.TxRecharge,
			Amount:       rc.Amount,
			BalanceAfter: p.Balance,
			Description:  "Recharge code " + rc.Code,
			Status:       domain.TxStatusCompleted,
			Reference:    rc.Code,
		}
		return tx.Transactions().Create(ctx, out)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, userID)
	logrus.WithFields(logrus.Fields{"user_id": userID, "code": code, "amount": out.Amount}).Info("Recharge code redeemed")
	return out, nil
}

// Transactions lists the user's ledger, newest first
func (s *WalletService) Transactions(ctx context.Context, userID uint, page repository.Page) (*Listing[domain.Transaction], error) {
	key := cache.HistoryPrefix(userID) + "tx:" + pageKey(page)
	var out Listing[domain.Transaction]
	if found, err := s.cache.Get(ctx, key, &out); err == nil && found {
		return &out, nil
	}
	items, total, err := s.store.Transactions().List(ctx, repository.TransactionFilter{UserID: userID}, page)
	if err != nil {
		return nil, err
	}
	out = Listing[domain.Transaction]{Items: items, Total: total}
	_ = s.cache.Set(ctx, key, out, historyTTL)
	return &out, nil
}

// Bets lists the user's bet history, newest first
func (s *WalletService) Bets(ctx context.Context, userID uint, page repository.Page) (*Listing[domain.BetHistoryEntry], error) {
	key := cache.HistoryPrefix(userID) + "bets:" + pageKey(page)
	var out Listing[domain.BetHistoryEntry]
	if found, err := s.cache.Get(ctx, key, &out); err == nil && found {
		return &out, nil
	}
	items, total, err := s.store.Bets().ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	out = Listing[domain.BetHistoryEntry]{Items: items, Total: total}
	_ = s.cache.Set(ctx, key, out, historyTTL)
	return &out, nil
}

// LeaderboardEntry is one ranked player
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Balance   int64  `json:"balance"`
}

const leaderboardSize = 20

// Leaderboard ranks players by balance
func (s *WalletService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	if found, err := s.cache.Get(ctx, cache.LeaderboardKey, &out); err == nil && found {
		return out, nil
	}
	top, err := s.store.Profiles().Top(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}
	out = make([]LeaderboardEntry, 0, len(top))
	for i, p := range top {
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL, Balance: p.Balance})
	}
	_ = s.cache.Set(ctx, cache.LeaderboardKey, out, leaderboardTTL)
	return out, nil
}
