package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"paywin/internal/auth"
	"paywin/internal/domain"
	"paywin/internal/game"
	"paywin/internal/repository"
	"paywin/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	s := fairSettings()
	s.StartingBalance = 1000
	e := newEnv(t, s)
	ctx := context.Background()

	p, err := e.wallet.Register(ctx, " Awa@Paywin.test ", "password1", "<b>Awa</b> K.")
	require.NoError(t, err)
	assert.Equal(t, "awa@paywin.test", p.Email)
	assert.Equal(t, "Awa K.", p.FullName)
	assert.Equal(t, int64(1000), p.Balance)
	assert.NotEqual(t, "password1", p.Password)

	txs := e.ledger(t, p.ID)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxDeposit, txs[0].Type)

	_, err = e.wallet.Register(ctx, "awa@paywin.test", "password2", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = e.wallet.Register(ctx, "not-an-email", "password1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.wallet.Register(ctx, "short@paywin.test", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	token, got, err := e.wallet.Authenticate(ctx, "AWA@paywin.test", "password1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	claims, err := auth.NewTokens(s.JWTSecret, time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.UserID)

	_, _, err = e.wallet.Authenticate(ctx, "awa@paywin.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = e.wallet.Authenticate(ctx, "nobody@paywin.test", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTransfer(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	a := e.player(t, "a@paywin.test", 5000)
	b := e.player(t, "b@paywin.test", 100)

	res, err := e.wallet.Transfer(ctx, b.ID, "A@paywin.test", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Balance)

	res, err = e.wallet.Transfer(ctx, a.ID, "b@paywin.test", 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), res.Balance)
	assert.Equal(t, int64(2100), e.balance(t, a.ID))
	assert.Equal(t, int64(3000), e.balance(t, b.ID))

	out := e.ledger(t, a.ID)[0]
	in := e.ledger(t, b.ID)[0]
	assert.Equal(t, domain.TxTransferOut, out.Type)
	assert.Equal(t, domain.TxTransferIn, in.Type)
	assert.Equal(t, res.Reference, out.Reference)
	assert.Equal(t, res.Reference, in.Reference)

	_, err = e.wallet.Transfer(ctx, a.ID, "a@paywin.test", 10)
	assert.ErrorIs(t, err, ErrSelfTransfer)
	_, err = e.wallet.Transfer(ctx, a.ID, "ghost@paywin.test", 10)
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	_, err = e.wallet.Transfer(ctx, a.ID, "b@paywin.test", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = e.wallet.Transfer(ctx, a.ID, "b@paywin.test", 99999)
	assert.ErrorIs(t, err, game.ErrInsufficientBalance)
	assert.Equal(t, int64(2100), e.balance(t, a.ID))
	assert.Equal(t, int64(3000), e.balance(t, b.ID))
}

func TestRedeemCode(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	p := e.player(t, "bonus@paywin.test", 0)
	other := e.player(t, "late@paywin.test", 0)

	codes, err := NewAdminService(e.store, e.cache).CreateRechargeCodes(ctx, 1, 1, 2500)
	require.NoError(t, err)

	t1, err := e.wallet.RedeemCode(ctx, p.ID, "  "+codes[0].Code)
	require.NoError(t, err)
	assert.Equal(t, domain.TxRecharge, t1.Type)
	assert.Equal(t, int64(2500), e.balance(t, p.ID))

	_, err = e.wallet.RedeemCode(ctx, p.ID, codes[0].Code)
	assert.ErrorIs(t, err, ErrCodeUsed)
	_, err = e.wallet.RedeemCode(ctx, other.ID, codes[0].Code)
	assert.ErrorIs(t, err, ErrCodeUsed)
	_, err = e.wallet.RedeemCode(ctx, other.ID, "NOPE")
	assert.ErrorIs(t, err, ErrCodeNotFound)
	assert.Equal(t, int64(0), e.balance(t, other.ID))

	rc, err := e.store.RechargeCodes().GetForUpdate(ctx, codes[0].Code)
	require.NoError(t, err)
	assert.True(t, rc.IsUsed)
	require.NotNil(t, rc.UsedBy)
	assert.Equal(t, p.ID, *rc.UsedBy)
}

func TestProfileCacheIsInvalidated(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	p := e.player(t, "cache@paywin.test", 5000)

	got, err := e.wallet.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Balance)

	_, err = e.games.PlayPlinko(ctx, p.ID, 1000)
	require.NoError(t, err)

	got, err = e.wallet.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, e.balance(t, p.ID), got.Balance)

	page, err := e.wallet.Bets(ctx, p.ID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	_, err = e.games.PlayPlinko(ctx, p.ID, 1000)
	require.NoError(t, err)
	page, err = e.wallet.Bets(ctx, p.ID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	p := e.player(t, "edit@paywin.test", 0)

	name, fav := "  Moussa <i>D</i> ", game.GamePlinko
	got, err := e.wallet.UpdateProfile(ctx, p.ID, ProfileUpdate{FullName: &name, FavoriteGame: &fav})
	require.NoError(t, err)
	assert.Equal(t, "Moussa D", got.FullName)
	assert.Equal(t, game.GamePlinko, got.FavoriteGame)

	bad := "blackjack"
	_, err = e.wallet.UpdateProfile(ctx, p.ID, ProfileUpdate{FavoriteGame: &bad})
	assert.ErrorIs(t, err, game.ErrUnknownGame)
}

type fakeUploader struct {
	key  string
	body []byte
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	f.key = key
	f.body, _ = io.ReadAll(body)
	return "https://cdn.paywin.test/" + key, nil
}

func TestSetAvatar(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	p := e.player(t, "avatar@paywin.test", 0)

	_, err := e.wallet.SetAvatar(ctx, p.ID, "me.png", "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, storage.ErrDisabled)

	up := &fakeUploader{}
	e.wallet.uploader = up
	_, err = e.wallet.SetAvatar(ctx, p.ID, "me.exe", "application/octet-stream", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	got, err := e.wallet.SetAvatar(ctx, p.ID, "Me.PNG", "image/png", bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.paywin.test/"+up.key, got.AvatarURL)
	assert.Regexp(t, `^avatars/\d+/[0-9a-f-]{36}\.png$`, up.key)
	assert.Equal(t, []byte("img"), up.body)
}

func TestLeaderboard(t *testing.T) {
	e := newEnv(t, fairSettings())
	ctx := context.Background()
	e.player(t, "low@paywin.test", 100)
	top := e.player(t, "top@paywin.test", 90000)
	e.player(t, "mid@paywin.test", 5000)

	board, err := e.wallet.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, top.ID, board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, int64(100), board[2].Balance)
}
