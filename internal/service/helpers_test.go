package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"paywin/internal/auth"
	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/game"
	"paywin/internal/repository"
	"paywin/internal/repository/memstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type env struct {
	store    *memstore.Store
	cache    cache.Cache
	settings Settings
	games    *GameService
	wallet   *WalletService
}

func fairSettings() Settings {
	s := DefaultSettings
	s.Policy.Enabled = false
	s.JWTSecret = "test-secret"
	return s
}

func newEnv(t *testing.T, s Settings) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := &env{store: memstore.New(), cache: cache.NewRedis(rdb), settings: s}
	e.games = NewGameService(e.store, e.cache, nil, game.NewSeededRNG(7), s)
	e.wallet = NewWalletService(e.store, e.cache, auth.NewTokens(s.JWTSecret, time.Hour), nil, s)
	return e
}

func (e *env) player(t *testing.T, email string, balance int64) *domain.Profile {
	t.Helper()
	p := &domain.Profile{Email: email, Password: "x", Balance: balance}
	require.NoError(t, e.store.Profiles().Create(context.Background(), p))
	return p
}

func (e *env) balance(t *testing.T, id uint) int64 {
	t.Helper()
	p, err := e.store.Profiles().Get(context.Background(), id)
	require.NoError(t, err)
	return p.Balance
}

func (e *env) ledger(t *testing.T, id uint) []domain.Transaction {
	t.Helper()
	txs, _, err := e.store.Transactions().List(context.Background(), repository.TransactionFilter{UserID: id}, repository.Page{})
	require.NoError(t, err)
	return txs
}

func (e *env) bets(t *testing.T, id uint) []domain.BetHistoryEntry {
	t.Helper()
	bets, _, err := e.store.Bets().ListByUser(context.Background(), id, repository.Page{})
	require.NoError(t, err)
	return bets
}

// ledgerSum is the net effect of every ledger row of the user
func ledgerSum(txs []domain.Transaction) int64 {
	var sum int64
	for _, t := range txs {
		if t.Type.Credit() {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
	}
	return sum
}

// failingStore breaks the bet history write inside every unit of work
type failingStore struct{ repository.Store }

type failingTx struct{ repository.Tx }

type failingBets struct{ repository.BetRepository }

func (failingBets) Create(context.Context, *domain.BetHistoryEntry) error { return errBoom }

func (t failingTx) Bets() repository.BetRepository { return failingBets{t.Tx.Bets()} }

func (s failingStore) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.Store.Atomic(ctx, func(tx repository.Tx) error { return fn(failingTx{tx}) })
}
