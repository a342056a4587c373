package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/game"
	"paywin/internal/metrics"
	"paywin/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameService settles plays against the player's balance
type GameService struct {
	store    repository.Store
	cache    cache.Cache
	metrics  *metrics.Metrics
	rng      game.RNG
	settings Settings
	now      func() time.Time
}

func NewGameService(store repository.Store, c cache.Cache, m *metrics.Metrics, rng game.RNG, s Settings) *GameService {
	return &GameService{store: store, cache: c, metrics: m, rng: rng, settings: s, now: time.Now}
}

// DiceResult is returned by the dice and Plus-ou-Moins endpoints
type DiceResult struct {
	game.DiceOutcome
	Bet     int64 `json:"bet"`
	Balance int64 `json:"balance"`
}

// PlinkoResult is returned by the plinko endpoint
type PlinkoResult struct {
	game.PlinkoOutcome
	Bet     int64 `json:"bet"`
	Balance int64 `json:"balance"`
}

// MineRoundView is a round as shown to its player. Bomb cells and the salt
// are only disclosed once the round is over.
type MineRoundView struct {
	*domain.MineRound
	BombCells      []int   `json:"bomb_cells,omitempty"`
	Salt           string  `json:"salt,omitempty"`
	Bust           bool    `json:"bust"`
	NextMultiplier float64 `json:"next_multiplier"`
	Balance        int64   `json:"balance"`
}

// AdjustBet applies a stake control for the player's current balance
func (s *GameService) AdjustBet(ctx context.Context, userID uint, current int64, action game.BetAction) (int64, error) {
	p, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return 0, notFound(err, repository.ErrNotFound)
	}
	return s.settings.Limits.Adjust(current, action, p.Balance)
}

// play describes a settled single-shot game
type play struct {
	game       string
	bet        int64
	payout     int64
	multiplier float64
	bias       game.Bias
	detail     any
}

// lockForPlay loads the profile under lock and runs the VIP and stake checks
func (s *GameService) lockForPlay(ctx context.Context, tx repository.Tx, userID uint, gameID string, bet int64) (*domain.Profile, error) {
	p, err := tx.Profiles().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := game.CheckAccess(gameID, p.Balance, s.settings.VIPThreshold); err != nil {
		return nil, err
	}
	if err := s.settings.Limits.Validate(bet, p.Balance); err != nil {
		return nil, err
	}
	return p, nil
}

// settle writes the balance, the ledger row and the bet history of a play.
// A push leaves the balance alone and writes no ledger row.
func (s *GameService) settle(ctx context.Context, tx repository.Tx, p *domain.Profile, pl play) error {
	net := pl.payout - pl.bet
	p.Balance += net
	if err := tx.Profiles().Save(ctx, p); err != nil {
		return err
	}

	switch {
	case net > 0:
		err := tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       p.ID,
			Type:         domain.TxGameWin,
			Amount:       net,
			BalanceAfter: p.Balance,
			Description:  fmt.Sprintf("%s win x%g", pl.game, pl.multiplier),
			Status:       domain.TxStatusCompleted,
		})
		if err != nil {
			return err
		}
	case net < 0:
		err := tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       p.ID,
			Type:         domain.TxGameLoss,
			Amount:       -net,
			BalanceAfter: p.Balance,
			Description:  fmt.Sprintf("%s loss", pl.game),
			Status:       domain.TxStatusCompleted,
		})
		if err != nil {
			return err
		}
	}

	detail, err := json.Marshal(pl.detail)
	if err != nil {
		return err
	}
	return tx.Bets().Create(ctx, &domain.BetHistoryEntry{
		UserID:     p.ID,
		GameName:   pl.game,
		BetAmount:  pl.bet,
		WinAmount:  pl.payout,
		Multiplier: pl.multiplier,
		Result:     resultOf(pl.bet, pl.payout),
		Forced:     pl.bias != game.BiasNone,
		Detail:     string(detail),
	})
}

func resultOf(bet, payout int64) string {
	switch {
	case payout > bet:
		return domain.ResultWin
	case payout < bet:
		return domain.ResultLoss
	}
	return domain.ResultPush
}

func (s *GameService) afterPlay(ctx context.Context, userID uint, pl play) {
	invalidate(ctx, s.cache, userID)
	s.metrics.ObservePlay(pl.game, resultOf(pl.bet, pl.payout), pl.bet, pl.payout, pl.bias.String())
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"game":    pl.game,
		"bet":     pl.bet,
		"payout":  pl.payout,
		"bias":    pl.bias.String(),
	}).Info("Play settled")
}

// PlayDice settles an even/odd bet
func (s *GameService) PlayDice(ctx context.Context, userID uint, bet int64, choice string) (*DiceResult, error) {
	return s.playDice(ctx, userID, game.GameDice, bet, choice, game.PlayDice)
}

// PlayOverUnder settles a Plus-ou-Moins bet
func (s *GameService) PlayOverUnder(ctx context.Context, userID uint, bet int64, choice string) (*DiceResult, error) {
	return s.playDice(ctx, userID, game.GamePlusOuMoins, bet, choice, game.PlayOverUnder)
}

type diceRule func(rng game.RNG, policy game.Policy, balance, bet int64, choice string) (game.DiceOutcome, error)

func (s *GameService) playDice(ctx context.Context, userID uint, gameID string, bet int64, choice string, rule diceRule) (*DiceResult, error) {
	var res DiceResult
	var pl play
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := s.lockForPlay(ctx, tx, userID, gameID, bet)
		if err != nil {
			return err
		}
		out, err := rule(s.rng, s.settings.Policy, p.Balance, bet, choice)
		if err != nil {
			return err
		}
		pl = play{game: gameID, bet: bet, payout: out.Payout, multiplier: out.Multiplier, bias: out.Bias, detail: out}
		if err := s.settle(ctx, tx, p, pl); err != nil {
			return err
		}
		res = DiceResult{DiceOutcome: out, Bet: bet, Balance: p.Balance}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gameID, err)
	}
	s.afterPlay(ctx, userID, pl)
	return &res, nil
}

// PlayPlinko drops one ball
func (s *GameService) PlayPlinko(ctx context.Context, userID uint, bet int64) (*PlinkoResult, error) {
	var res PlinkoResult
	var pl play
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := s.lockForPlay(ctx, tx, userID, game.GamePlinko, bet)
		if err != nil {
			return err
		}
		out := game.PlayPlinko(s.rng, s.settings.Policy, p.Balance, bet)
		pl = play{game: game.GamePlinko, bet: bet, payout: out.Payout, multiplier: out.Multiplier, bias: out.Bias, detail: out}
		if err := s.settle(ctx, tx, p, pl); err != nil {
			return err
		}
		res = PlinkoResult{PlinkoOutcome: out, Bet: bet, Balance: p.Balance}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("plinko: %w", err)
	}
	s.afterPlay(ctx, userID, pl)
	return &res, nil
}

func boardOf(r *domain.MineRound) *game.Board {
	return &game.Board{
		Variant:   game.Variant(r.Variant),
		Bombs:     r.Bombs,
		BombCells: r.BombCells,
		Revealed:  r.Revealed,
		Finished:  !r.Active(),
	}
}

func viewOf(r *domain.MineRound, balance int64) *MineRoundView {
	v := &MineRoundView{MineRound: r, Balance: balance}
	if r.Active() {
		v.NextMultiplier = game.MineMultiplier(len(r.Revealed)+1, r.Bombs)
	} else {
		v.BombCells = r.BombCells
		v.Salt = r.Salt
	}
	return v
}

// StartMines takes the stake and opens a round. Only one round per player
// can be active at a time.
func (s *GameService) StartMines(ctx context.Context, userID uint, variant string, bet int64, bombs int) (*MineRoundView, error) {
	v, err := game.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	var view *MineRoundView
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		p, err := s.lockForPlay(ctx, tx, userID, string(v), bet)
		if err != nil {
			return err
		}
		active, err := tx.MineRounds().ActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return ErrRoundInProgress
		}
		board, err := game.NewBoard(s.rng, v, bombs)
		if err != nil {
			return err
		}

		round := &domain.MineRound{
			ID:         uuid.NewString(),
			UserID:     userID,
			Variant:    string(v),
			BetAmount:  bet,
			Bombs:      bombs,
			BombCells:  board.BombCells,
			Revealed:   []int{},
			Status:     domain.RoundActive,
			Multiplier: board.Multiplier(),
		}
		if !v.Dynamic() {
			round.Salt = uuid.NewString()
			round.Commitment = game.Commitment(round.Salt, round.BombCells)
		}
		if err := tx.MineRounds().Create(ctx, round); err != nil {
			return err
		}

		p.Balance -= bet
		if err := tx.Profiles().Save(ctx, p); err != nil {
			return err
		}
		err = tx.Transactions().Create(ctx, &domain.Transaction{
			UserID:       userID,
			Type:         domain.TxGameBet,
			Amount:       bet,
			BalanceAfter: p.Balance,
			Description:  fmt.Sprintf("%s bet, %d bombs", v, bombs),
			Status:       domain.TxStatusCompleted,
			Reference:    round.ID,
		})
		if err != nil {
			return err
		}
		view = viewOf(round, p.Balance)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", variant, err)
	}

	invalidate(ctx, s.cache, userID)
	s.metrics.RoundStarted()
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"round_id": view.ID,
		"variant":  view.Variant,
		"bet":      bet,
		"bombs":    bombs,
	}).Info("Mine round started")
	return view, nil
}

func (s *GameService) lockRound(ctx context.Context, tx repository.Tx, userID uint, roundID string) (*domain.MineRound, error) {
	r, err := tx.MineRounds().GetForUpdate(ctx, roundID)
	if err != nil {
		return nil, notFound(err, ErrRoundNotFound)
	}
	if r.UserID != userID {
		return nil, ErrRoundNotFound
	}
	if !r.Active() {
		return nil, game.ErrRoundFinished
	}
	return r, nil
}

// closeRound stores the final board and the bet history entry
func (s *GameService) closeRound(ctx context.Context, tx repository.Tx, r *domain.MineRound, board *game.Board, status string) error {
	board.Finish(s.rng)
	r.BombCells = board.BombCells
	r.Revealed = board.Revealed
	r.Status = status
	if err := tx.MineRounds().Save(ctx, r); err != nil {
		return err
	}

	result := resultOf(r.BetAmount, r.WinAmount)
	if status != domain.RoundCashedOut {
		result = domain.ResultLoss
	}
	detail, err := json.Marshal(map[string]any{
		"round_id":   r.ID,
		"status":     status,
		"bombs":      r.Bombs,
		"bomb_cells": r.BombCells,
		"revealed":   r.Revealed,
		"commitment": r.Commitment,
	})
	if err != nil {
		return err
	}
	return tx.Bets().Create(ctx, &domain.BetHistoryEntry{
		UserID:     r.UserID,
		GameName:   r.Variant,
		BetAmount:  r.BetAmount,
		WinAmount:  r.WinAmount,
		Multiplier: r.Multiplier,
		Result:     result,
		Detail:     string(detail),
	})
}

// cashout credits the current multiplier and closes the round
func (s *GameService) cashout(ctx context.Context, tx repository.Tx, r *domain.MineRound, board *game.Board) (int64, error) {
	p, err := tx.Profiles().GetForUpdate(ctx, r.UserID)
	if err != nil {
		return 0, err
	}
	r.Multiplier = board.Multiplier()
	r.WinAmount = game.Payout(r.BetAmount, r.Multiplier)
	p.Balance += r.WinAmount
	if err := tx.Profiles().Save(ctx, p); err != nil {
		return 0, err
	}
	err = tx.Transactions().Create(ctx, &domain.Transaction{
		UserID:       p.ID,
		Type:         domain.TxGameWin,
		Amount:       r.WinAmount,
		BalanceAfter: p.Balance,
		Description:  fmt.Sprintf("%s cash-out x%g", r.Variant, r.Multiplier),
		Status:       domain.TxStatusCompleted,
		Reference:    r.ID,
	})
	if err != nil {
		return 0, err
	}
	return p.Balance, s.closeRound(ctx, tx, r, board, domain.RoundCashedOut)
}

// RevealMine opens one cell. Hitting a bomb loses the stake; clearing every
// safe cell cashes out automatically.
func (s *GameService) RevealMine(ctx context.Context, userID uint, roundID string, cell int) (*MineRoundView, error) {
	var view *MineRoundView
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		r, err := s.lockRound(ctx, tx, userID, roundID)
		if err != nil {
			return err
		}
		board := boardOf(r)
		bust, err := board.Reveal(s.rng, cell)
		if err != nil {
			return err
		}

		balance := int64(-1)
		switch {
		case bust:
			r.Multiplier, r.WinAmount = 0, 0
			err = s.closeRound(ctx, tx, r, board, domain.RoundBusted)
		case board.Finished:
			balance, err = s.cashout(ctx, tx, r, board)
		default:
			r.Revealed = board.Revealed
			r.BombCells = board.BombCells
			r.Multiplier = board.Multiplier()
			err = tx.MineRounds().Save(ctx, r)
		}
		if err != nil {
			return err
		}
		if balance < 0 {
			p, err := tx.Profiles().Get(ctx, userID)
			if err != nil {
				return err
			}
			balance = p.Balance
		}
		view = viewOf(r, balance)
		view.Bust = bust
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reveal: %w", err)
	}
	if !view.Active() {
		s.afterRound(ctx, view.MineRound)
	}
	return view, nil
}

// CashoutMines ends an active round at its current multiplier
func (s *GameService) CashoutMines(ctx context.Context, userID uint, roundID string) (*MineRoundView, error) {
	var view *MineRoundView
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		r, err := s.lockRound(ctx, tx, userID, roundID)
		if err != nil {
			return err
		}
		balance, err := s.cashout(ctx, tx, r, boardOf(r))
		if err != nil {
			return err
		}
		view = viewOf(r, balance)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cashout: %w", err)
	}
	s.afterRound(ctx, view.MineRound)
	return view, nil
}

func (s *GameService) afterRound(ctx context.Context, r *domain.MineRound) {
	invalidate(ctx, s.cache, r.UserID)
	s.metrics.RoundSettled()
	s.metrics.ObservePlay(r.Variant, resultOf(r.BetAmount, r.WinAmount), r.BetAmount, r.WinAmount, "")
	logrus.WithFields(logrus.Fields{
		"user_id":  r.UserID,
		"round_id": r.ID,
		"status":   r.Status,
		"payout":   r.WinAmount,
	}).Info("Mine round closed")
}

// ActiveMines lists the player's open rounds
func (s *GameService) ActiveMines(ctx context.Context, userID uint) ([]*MineRoundView, error) {
	rounds, err := s.store.MineRounds().ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*MineRoundView, 0, len(rounds))
	for i := range rounds {
		out = append(out, viewOf(&rounds[i], p.Balance))
	}
	return out, nil
}

// ExpireStaleRounds closes active rounds idle for longer than ttl. The stake
// stays lost. Each round is closed in its own transaction.
func (s *GameService) ExpireStaleRounds(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.store.MineRounds().StaleIDs(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		var closed *domain.MineRound
		err := s.store.Atomic(ctx, func(tx repository.Tx) error {
			r, err := tx.MineRounds().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !r.Active() {
				return nil
			}
			r.Multiplier, r.WinAmount = 0, 0
			if err := s.closeRound(ctx, tx, r, boardOf(r), domain.RoundExpired); err != nil {
				return err
			}
			closed = r
			return nil
		})
		if err != nil {
			return expired, fmt.Errorf("expire round %s: %w", id, err)
		}
		if closed != nil {
			expired++
			s.afterRound(ctx, closed)
		}
	}
	return expired, nil
}
