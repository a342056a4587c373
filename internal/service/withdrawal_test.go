package service

import (
	"context"
	"testing"

	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawal_MinimumCheckedBeforeStore(t *testing.T) {
	svc := NewWithdrawalService(nil, cache.Noop{}, DefaultSettings)
	_, err := svc.Request(context.Background(), 1, WithdrawalRequest{Amount: 6999, PaymentMethod: "orange", PaymentAddress: "0700000000"})
	assert.ErrorIs(t, err, ErrWithdrawalTooSmall)
}

func TestWithdrawal_Lifecycle(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	svc := NewWithdrawalService(e.store, e.cache, e.settings)
	p := e.player(t, "cashout@paywin.test", 20000)

	_, err := svc.Request(ctx, p.ID, WithdrawalRequest{Amount: 7000, PaymentMethod: "wave"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Request(ctx, p.ID, WithdrawalRequest{Amount: 50000, PaymentMethod: "wave", PaymentAddress: "0700000000"})
	assert.ErrorIs(t, err, game.ErrInsufficientBalance)

	w1, err := svc.Request(ctx, p.ID, WithdrawalRequest{Amount: 7000, PaymentMethod: "Wave", PaymentAddress: "0700000000"})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w1.Status)
	assert.Equal(t, "wave", w1.PaymentMethod)
	assert.Equal(t, int64(13000), e.balance(t, p.ID))

	w2, err := svc.Request(ctx, p.ID, WithdrawalRequest{Amount: 8000, PaymentMethod: "orange", PaymentAddress: "0700000001"})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), e.balance(t, p.ID))

	_, err = svc.UpdateStatus(ctx, w1.ID, "paid")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, w1.ID, domain.WithdrawalProcessing)
	require.NoError(t, err)
	done, err := svc.UpdateStatus(ctx, w1.ID, domain.WithdrawalCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, done.Status)

	_, err = svc.UpdateStatus(ctx, w2.ID, domain.WithdrawalRejected)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, w2.ID, domain.WithdrawalCompleted)
	assert.ErrorIs(t, err, ErrWithdrawalFinal)

	got, err := e.store.Profiles().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(13000), got.Balance)
	assert.Equal(t, int64(7000), got.TotalWithdrawn)
	assert.Equal(t, got.Balance-20000, ledgerSum(e.ledger(t, p.ID)))

	status := map[string]string{}
	for _, tx := range e.ledger(t, p.ID) {
		if tx.Type == domain.TxWithdrawal {
			status[tx.Reference] = tx.Status
		}
	}
	assert.Equal(t, map[string]string{
		ref(w1.ID): domain.TxStatusCompleted,
		ref(w2.ID): domain.TxStatusReversed,
	}, status)

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
