package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	g, err := Lookup(GameDice)
	assert.NoError(t, err)
	assert.Equal(t, "Dice", g.Name)

	_, err = Lookup("aviator")
	assert.ErrorIs(t, err, ErrGameNotAvailable)

	_, err = Lookup("poker")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestCheckAccess_VIPGate(t *testing.T) {
	assert.NoError(t, CheckAccess(GameMine, 0, 50000))
	assert.ErrorIs(t, CheckAccess(GameRob, 49999, 50000), ErrVIPRequired)
	assert.NoError(t, CheckAccess(GameBaz, 50000, 50000))
	assert.ErrorIs(t, CheckAccess("roulette", 1e6, 50000), ErrGameNotAvailable)
}
