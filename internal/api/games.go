package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"paywin/internal/game"       // Catalog and stake rules
	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Game use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// BetRequest is the payload of the instant games
type BetRequest struct {
	Amount int64  `json:"amount" binding:"required"` // Stake
	Choice string `json:"choice"`                    // Dice and Plus-ou-Moins side
}

// StartMinesRequest opens a mine round
type StartMinesRequest struct {
	Amount  int64  `json:"amount" binding:"required"` // Stake
	Bombs   int    `json:"bombs" binding:"required"`  // Bombs on the 5x5 board
	Variant string `json:"variant"`                   // mine, rob or baz; defaults to mine
}

// RevealRequest uncovers one cell
type RevealRequest struct {
	Cell *int `json:"cell" binding:"required"` // Cell index 0-24
}

// ListGamesHandler returns the lobby catalog
func ListGamesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"games": game.Catalog})
	}
}

// GetGameHandler returns one playable game. Unknown and announced games are
// both reported as not available.
func GetGameHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := game.Lookup(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": game.ErrGameNotAvailable.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game": info})
	}
}

// AdjustBetHandler applies a stake control to the current amount
func AdjustBetHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
		if err != nil {
			badRequest(c, "Invalid amount")
			return
		}
		action := game.BetAction(c.Query("action"))
		next, err := games.AdjustBet(c.Request.Context(), middleware.UserID(c), amount, action)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"amount": next})
	}
}

// diceHandler plays one dice round, classic or Plus-ou-Moins
func diceHandler(play func(*gin.Context, int64, string) (*service.DiceResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		res, err := play(c, req.Amount, req.Choice)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// PlayDiceHandler plays even/odd dice
func PlayDiceHandler(games *service.GameService) gin.HandlerFunc {
	return diceHandler(func(c *gin.Context, amount int64, choice string) (*service.DiceResult, error) {
		return games.PlayDice(c.Request.Context(), middleware.UserID(c), amount, choice)
	})
}

// PlayOverUnderHandler plays Plus-ou-Moins
func PlayOverUnderHandler(games *service.GameService) gin.HandlerFunc {
	return diceHandler(func(c *gin.Context, amount int64, choice string) (*service.DiceResult, error) {
		return games.PlayOverUnder(c.Request.Context(), middleware.UserID(c), amount, choice)
	})
}

// PlayPlinkoHandler drops one plinko ball
func PlayPlinkoHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		res, err := games.PlayPlinko(c.Request.Context(), middleware.UserID(c), req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// StartMinesHandler opens a mine round and holds the stake
func StartMinesHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartMinesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		if req.Variant == "" {
			req.Variant = string(game.VariantMine) // Default variant
		}
		view, err := games.StartMines(c.Request.Context(), middleware.UserID(c), req.Variant, req.Amount, req.Bombs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

// RevealMineHandler uncovers a cell of the caller's round
func RevealMineHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RevealRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		view, err := games.RevealMine(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.Cell)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// CashoutMinesHandler settles the caller's round at the current multiplier
func CashoutMinesHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := games.CashoutMines(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// ActiveMinesHandler lists the caller's open rounds
func ActiveMinesHandler(games *service.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rounds, err := games.ActiveMines(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rounds": rounds})
	}
}
