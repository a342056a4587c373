package game

import "errors"

var (
	ErrBetTooSmall         = errors.New("bet is below the minimum stake")
	ErrBetTooLarge         = errors.New("bet is above the maximum stake")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrInvalidBombCount    = errors.New("bomb count must be between 1 and 24")
	ErrInvalidCell         = errors.New("cell must be between 0 and 24")
	ErrCellAlreadyRevealed = errors.New("cell already revealed")
	ErrRoundFinished       = errors.New("round is finished")
	ErrUnknownVariant      = errors.New("unknown mines variant")
	ErrUnknownGame         = errors.New("unknown game")
	ErrGameNotAvailable    = errors.New("game not available")
	ErrVIPRequired         = errors.New("game is reserved for VIP players")
)
