package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Account use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToEmail string `json:"to_email" binding:"required"`    // Recipient email
	Amount  int64  `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// RedeemRequest carries a recharge code
type RedeemRequest struct {
	Code string `json:"code" binding:"required"` // Recharge code
}

// TransferHandler moves credit to another player's balance
func TransferHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		res, err := wallet.Transfer(c.Request.Context(), middleware.UserID(c), req.ToEmail, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "transfer": res})
	}
}

// RedeemCodeHandler credits a recharge code
func RedeemCodeHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RedeemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		tx, err := wallet.RedeemCode(c.Request.Context(), middleware.UserID(c), req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Code redeemed", "transaction": tx})
	}
}

// TransactionHistoryHandler returns the caller's paginated ledger
func TransactionHistoryHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paginate(c)
		list, err := wallet.Transactions(c.Request.Context(), middleware.UserID(c), p.window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.body("transactions", list.Items, list.Total))
	}
}

// BetHistoryHandler returns the caller's paginated bet history
func BetHistoryHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paginate(c)
		list, err := wallet.Bets(c.Request.Context(), middleware.UserID(c), p.window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.body("bets", list.Items, list.Total))
	}
}

// LeaderboardHandler ranks players by balance
func LeaderboardHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := wallet.Leaderboard(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
