package game

// Game identifiers
const (
	GameMine        = "mine"
	GameRob         = "rob"
	GameBaz         = "baz"
	GameDice        = "dice"
	GamePlinko      = "plinko"
	GamePlusOuMoins = "plus-ou-moins"
)

// Info describes one catalog entry
type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VIP       bool   `json:"vip"`
	Available bool   `json:"available"`
}

// Catalog lists every game shown in the lobby, including announced ones
var Catalog = []Info{
	{ID: GameMine, Name: "Mine", Available: true},
	{ID: GameDice, Name: "Dice", Available: true},
	{ID: GamePlinko, Name: "Plinko", Available: true},
	{ID: GamePlusOuMoins, Name: "Plus ou Moins", Available: true},
	{ID: GameRob, Name: "Rob", VIP: true, Available: true},
	{ID: GameBaz, Name: "Baz", VIP: true, Available: true},
	{ID: "aviator", Name: "Aviator"},
	{ID: "roulette", Name: "Roulette"},
}

// Lookup finds a playable game
func Lookup(id string) (Info, error) {
	for _, g := range Catalog {
		if g.ID != id {
			continue
		}
		if !g.Available {
			return g, ErrGameNotAvailable
		}
		return g, nil
	}
	return Info{}, ErrUnknownGame
}

// CheckAccess applies the VIP gate for the given balance
func CheckAccess(id string, balance, vipThreshold int64) error {
	g, err := Lookup(id)
	if err != nil {
		return err
	}
	if g.VIP && balance < vipThreshold {
		return ErrVIPRequired
	}
	return nil
}
