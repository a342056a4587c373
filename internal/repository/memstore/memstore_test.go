package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"paywin/internal/domain"
	"paywin/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &domain.Profile{Email: "a@paywin.test", Balance: 1000}
	require.NoError(t, s.Profiles().Create(ctx, p))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx repository.Tx) error {
		locked, err := tx.Profiles().GetForUpdate(ctx, p.ID)
		require.NoError(t, err)
		locked.Balance = 0
		require.NoError(t, tx.Profiles().Save(ctx, locked))
		require.NoError(t, tx.Transactions().Create(ctx, &domain.Transaction{UserID: p.ID, Type: domain.TxGameBet, Amount: 1000}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Profiles().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance)

	txs, total, err := s.Transactions().List(ctx, repository.TransactionFilter{UserID: p.ID}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, txs)
}

func TestStore_AtomicCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &domain.Profile{Email: "b@paywin.test", Balance: 1000}
	require.NoError(t, s.Profiles().Create(ctx, p))

	err := s.Atomic(ctx, func(tx repository.Tx) error {
		locked, err := tx.Profiles().GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		locked.Balance += 500
		return tx.Profiles().Save(ctx, locked)
	})
	require.NoError(t, err)

	got, err := s.Profiles().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Balance)
}

func TestProfiles_DuplicateAndMissing(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Profiles().Create(ctx, &domain.Profile{Email: "c@paywin.test"}))
	assert.ErrorIs(t, s.Profiles().Create(ctx, &domain.Profile{Email: "c@paywin.test"}), repository.ErrDuplicate)

	_, err := s.Profiles().Get(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Profiles().GetByEmail(ctx, "nobody@paywin.test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfiles_TopOrdersByBalance(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, b := range []int64{300, 900, 100, 900} {
		require.NoError(t, s.Profiles().Create(ctx, &domain.Profile{Email: string(rune('a'+i)) + "@x", Balance: b}))
	}
	top, err := s.Profiles().Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []uint{2, 4, 1}, []uint{top[0].ID, top[1].ID, top[2].ID})
}

func TestPosts_ToggleLikeAndComments(t *testing.T) {
	ctx := context.Background()
	s := New()
	post := &domain.Post{UserID: 1, Content: "hello", Slug: "hello"}
	require.NoError(t, s.Posts().Create(ctx, post))

	liked, err := s.Posts().ToggleLike(ctx, post.ID, 7)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = s.Posts().ToggleLike(ctx, post.ID, 7)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, s.Posts().AddComment(ctx, &domain.PostComment{PostID: post.ID, UserID: 7, Content: "hi"}))
	got, err := s.Posts().Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)
	assert.Equal(t, int64(1), got.CommentCount)

	_, err = s.Posts().ToggleLike(ctx, 99, 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRounds_StaleIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }
	require.NoError(t, s.MineRounds().Create(ctx, &domain.MineRound{ID: "old", Status: domain.RoundActive}))
	s.Now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, s.MineRounds().Create(ctx, &domain.MineRound{ID: "new", Status: domain.RoundActive}))
	require.NoError(t, s.MineRounds().Create(ctx, &domain.MineRound{ID: "done", Status: domain.RoundBusted}))

	ids, err := s.MineRounds().StaleIDs(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids)
}

func TestPayments_ExpirePending(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }
	require.NoError(t, s.Payments().Create(ctx, &domain.Payment{Token: "t1", Amount: 100}))
	require.NoError(t, s.Payments().Create(ctx, &domain.Payment{Token: "t2", Amount: 100, Status: domain.PaymentCompleted}))
	assert.ErrorIs(t, s.Payments().Create(ctx, &domain.Payment{Token: "t1"}), repository.ErrDuplicate)

	n, err := s.Payments().ExpirePending(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := s.Payments().GetByTokenForUpdate(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentExpired, p.Status)
}

func TestTransactions_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	rows := []domain.Transaction{
		{UserID: 1, Type: domain.TxWithdrawal, Amount: 7000, Reference: "4", Status: domain.TxStatusPending},
		{UserID: 1, Type: domain.TxWithdrawalRefund, Amount: 7000, Reference: "4"},
		{UserID: 2, Type: domain.TxWithdrawal, Amount: 7000, Reference: "4", Status: domain.TxStatusPending},
	}
	for i := range rows {
		require.NoError(t, s.Transactions().Create(ctx, &rows[i]))
	}

	n, err := s.Transactions().SetStatus(ctx, 1, domain.TxWithdrawal, "4", domain.TxStatusReversed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	status := map[uint]map[domain.TransactionType]string{1: {}, 2: {}}
	for _, uid := range []uint{1, 2} {
		txs, _, err := s.Transactions().List(ctx, repository.TransactionFilter{UserID: uid}, repository.Page{})
		require.NoError(t, err)
		for _, tx := range txs {
			status[uid][tx.Type] = tx.Status
		}
	}
	assert.Equal(t, domain.TxStatusReversed, status[1][domain.TxWithdrawal])
	assert.Equal(t, domain.TxStatusCompleted, status[1][domain.TxWithdrawalRefund])
	assert.Equal(t, domain.TxStatusPending, status[2][domain.TxWithdrawal])
}
