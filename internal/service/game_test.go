package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"paywin/internal/domain"
	"paywin/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayDice_Settles(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "dice@paywin.test", 5000)

	res, err := e.games.PlayDice(context.Background(), p.ID, 200, "even")
	require.NoError(t, err)

	assert.Equal(t, res.Roll.Die1+res.Roll.Die2, res.Roll.Sum)
	assert.Equal(t, res.Win, res.Roll.Sum%2 == 0)
	assert.Equal(t, int64(5000-200)+res.Payout, res.Balance)
	assert.Equal(t, res.Balance, e.balance(t, p.ID))

	txs := e.ledger(t, p.ID)
	require.Len(t, txs, 1)
	assert.Equal(t, res.Balance, txs[0].BalanceAfter)
	if res.Win {
		assert.Equal(t, domain.TxGameWin, txs[0].Type)
		assert.Equal(t, int64(192), txs[0].Amount)
	} else {
		assert.Equal(t, domain.TxGameLoss, txs[0].Type)
		assert.Equal(t, int64(200), txs[0].Amount)
	}

	bets := e.bets(t, p.ID)
	require.Len(t, bets, 1)
	assert.Equal(t, game.GameDice, bets[0].GameName)
	assert.False(t, bets[0].Forced)
	assert.Contains(t, bets[0].Detail, `"choice":"even"`)
}

func TestPlays_LedgerMatchesBalance(t *testing.T) {
	e := newEnv(t, DefaultSettings)
	p := e.player(t, "ledger@paywin.test", 5000)
	ctx := context.Background()

	for i := range 60 {
		var err error
		switch i % 3 {
		case 0:
			_, err = e.games.PlayDice(ctx, p.ID, 300, "odd")
		case 1:
			_, err = e.games.PlayOverUnder(ctx, p.ID, 200, "over")
		default:
			_, err = e.games.PlayPlinko(ctx, p.ID, 400)
		}
		if err != nil {
			require.ErrorIs(t, err, game.ErrInsufficientBalance)
		}
	}

	assert.Equal(t, e.balance(t, p.ID)-5000, ledgerSum(e.ledger(t, p.ID)))
}

func TestPlayDice_ConcurrentBets(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "race@paywin.test", 10000)
	ctx := context.Background()

	const players = 20
	errs := make([]error, players)
	var wg sync.WaitGroup
	for i := range players {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.games.PlayDice(ctx, p.ID, 200, "even")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, e.bets(t, p.ID), players)
	assert.Equal(t, e.balance(t, p.ID)-10000, ledgerSum(e.ledger(t, p.ID)))
}

func TestPlayDice_ForcedLossAtCeiling(t *testing.T) {
	e := newEnv(t, DefaultSettings)
	p := e.player(t, "rich@paywin.test", 9500)

	res, err := e.games.PlayDice(context.Background(), p.ID, 600, "even")
	require.NoError(t, err)
	assert.False(t, res.Win)
	assert.Equal(t, int64(8900), e.balance(t, p.ID))

	bets := e.bets(t, p.ID)
	require.Len(t, bets, 1)
	assert.True(t, bets[0].Forced)
	assert.Equal(t, domain.ResultLoss, bets[0].Result)
}

func TestPlay_RejectedStakes(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "limits@paywin.test", 5000)
	ctx := context.Background()

	_, err := e.games.PlayDice(ctx, p.ID, 100, "even")
	assert.ErrorIs(t, err, game.ErrBetTooSmall)
	_, err = e.games.PlayPlinko(ctx, p.ID, 20000)
	assert.ErrorIs(t, err, game.ErrBetTooLarge)
	_, err = e.games.PlayOverUnder(ctx, p.ID, 6000, "seven")
	assert.ErrorIs(t, err, game.ErrInsufficientBalance)
	_, err = e.games.PlayDice(ctx, p.ID, 200, "sixes")
	assert.ErrorIs(t, err, game.ErrInvalidChoice)

	assert.Equal(t, int64(5000), e.balance(t, p.ID))
	assert.Empty(t, e.ledger(t, p.ID))
}

func TestPlay_FailedCommitLeavesBalance(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "rollback@paywin.test", 5000)
	broken := NewGameService(failingStore{e.store}, e.cache, nil, game.NewSeededRNG(1), e.settings)

	_, err := broken.PlayPlinko(context.Background(), p.ID, 1000)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(5000), e.balance(t, p.ID))
	assert.Empty(t, e.ledger(t, p.ID))
}

func TestAdjustBet(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "adjust@paywin.test", 750)
	ctx := context.Background()

	got, err := e.games.AdjustBet(ctx, p.ID, 700, game.BetIncrease)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got)

	got, err = e.games.AdjustBet(ctx, p.ID, 200, game.BetDecrease)
	require.NoError(t, err)
	assert.Equal(t, int64(200), got)
}

func safeCell(r *domain.MineRound) int {
	for c := range game.GridSize {
		if !slices.Contains(r.BombCells, c) && !slices.Contains(r.Revealed, c) {
			return c
		}
	}
	return -1
}

func TestMines_RevealAndCashout(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "mines@paywin.test", 5000)
	ctx := context.Background()

	view, err := e.games.StartMines(ctx, p.ID, "mine", 1000, 3)
	require.NoError(t, err)
	assert.Nil(t, view.BombCells)
	assert.Empty(t, view.Salt)
	assert.NotEmpty(t, view.Commitment)
	assert.Equal(t, int64(4000), view.Balance)
	assert.Equal(t, game.MineMultiplier(1, 3), view.NextMultiplier)

	_, err = e.games.StartMines(ctx, p.ID, "mine", 200, 3)
	assert.ErrorIs(t, err, ErrRoundInProgress)

	stored, err := e.store.MineRounds().GetForUpdate(ctx, view.ID)
	require.NoError(t, err)
	for range 2 {
		view, err = e.games.RevealMine(ctx, p.ID, view.ID, safeCell(stored))
		require.NoError(t, err)
		assert.False(t, view.Bust)
		stored.Revealed = view.Revealed
	}
	assert.Equal(t, game.MineMultiplier(2, 3), view.Multiplier)

	_, err = e.games.RevealMine(ctx, p.ID, view.ID, view.Revealed[0])
	assert.ErrorIs(t, err, game.ErrCellAlreadyRevealed)

	done, err := e.games.CashoutMines(ctx, p.ID, view.ID)
	require.NoError(t, err)
	payout := game.Payout(1000, game.MineMultiplier(2, 3))
	assert.Equal(t, domain.RoundCashedOut, done.Status)
	assert.Equal(t, payout, done.WinAmount)
	assert.Equal(t, 4000+payout, done.Balance)
	assert.Equal(t, done.Commitment, game.Commitment(done.Salt, done.BombCells))
	assert.Len(t, done.BombCells, 3)

	assert.Equal(t, e.balance(t, p.ID)-5000, ledgerSum(e.ledger(t, p.ID)))
	bets := e.bets(t, p.ID)
	require.Len(t, bets, 1)
	assert.Equal(t, domain.ResultWin, bets[0].Result)

	_, err = e.games.CashoutMines(ctx, p.ID, view.ID)
	assert.ErrorIs(t, err, game.ErrRoundFinished)
}

func TestMines_Bust(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "bust@paywin.test", 5000)
	ctx := context.Background()

	view, err := e.games.StartMines(ctx, p.ID, "mine", 500, 5)
	require.NoError(t, err)
	stored, err := e.store.MineRounds().GetForUpdate(ctx, view.ID)
	require.NoError(t, err)

	done, err := e.games.RevealMine(ctx, p.ID, view.ID, stored.BombCells[0])
	require.NoError(t, err)
	assert.True(t, done.Bust)
	assert.Equal(t, domain.RoundBusted, done.Status)
	assert.Len(t, done.BombCells, 5)
	assert.Equal(t, int64(4500), e.balance(t, p.ID))

	bets := e.bets(t, p.ID)
	require.Len(t, bets, 1)
	assert.Equal(t, domain.ResultLoss, bets[0].Result)
	assert.Zero(t, bets[0].WinAmount)
}

func TestMines_ClearingCashesOut(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "clear@paywin.test", 5000)
	ctx := context.Background()

	view, err := e.games.StartMines(ctx, p.ID, "mine", 200, 24)
	require.NoError(t, err)
	stored, err := e.store.MineRounds().GetForUpdate(ctx, view.ID)
	require.NoError(t, err)

	done, err := e.games.RevealMine(ctx, p.ID, view.ID, safeCell(stored))
	require.NoError(t, err)
	assert.Equal(t, domain.RoundCashedOut, done.Status)
	assert.Equal(t, game.Payout(200, game.MineMultiplier(1, 24)), done.WinAmount)
}

func TestMines_Guards(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "guard@paywin.test", 10000)
	other := e.player(t, "other@paywin.test", 10000)
	ctx := context.Background()

	_, err := e.games.StartMines(ctx, p.ID, "rob", 200, 3)
	assert.ErrorIs(t, err, game.ErrVIPRequired)
	_, err = e.games.StartMines(ctx, p.ID, "sweeper", 200, 3)
	assert.ErrorIs(t, err, game.ErrUnknownVariant)
	_, err = e.games.StartMines(ctx, p.ID, "mine", 200, 25)
	assert.ErrorIs(t, err, game.ErrInvalidBombCount)
	assert.Equal(t, int64(10000), e.balance(t, p.ID))

	view, err := e.games.StartMines(ctx, p.ID, "mine", 200, 3)
	require.NoError(t, err)
	_, err = e.games.RevealMine(ctx, other.ID, view.ID, 0)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = e.games.RevealMine(ctx, p.ID, "missing", 0)
	assert.ErrorIs(t, err, ErrRoundNotFound)

	active, err := e.games.ActiveMines(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, view.ID, active[0].ID)
}

func TestMines_VIPVariant(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "vip@paywin.test", 60000)
	ctx := context.Background()

	view, err := e.games.StartMines(ctx, p.ID, "baz", 1000, 3)
	require.NoError(t, err)
	assert.Empty(t, view.Commitment)

	var done *MineRoundView
	for cell := 0; cell < game.GridSize; cell++ {
		done, err = e.games.RevealMine(ctx, p.ID, view.ID, cell)
		require.NoError(t, err)
		if !done.Active() {
			break
		}
	}
	assert.False(t, done.Active())
	assert.Len(t, done.BombCells, 3)
}

func TestExpireStaleRounds(t *testing.T) {
	e := newEnv(t, fairSettings())
	p := e.player(t, "idle@paywin.test", 5000)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e.store.Now = func() time.Time { return start }

	view, err := e.games.StartMines(ctx, p.ID, "mine", 1000, 3)
	require.NoError(t, err)

	e.games.now = func() time.Time { return start.Add(10 * time.Minute) }
	n, err := e.games.ExpireStaleRounds(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)

	e.games.now = func() time.Time { return start.Add(time.Hour) }
	n, err = e.games.ExpireStaleRounds(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := e.store.MineRounds().GetForUpdate(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundExpired, r.Status)
	assert.Len(t, r.BombCells, 3)
	assert.Equal(t, int64(4000), e.balance(t, p.ID))
	require.Len(t, e.bets(t, p.ID), 1)
}
