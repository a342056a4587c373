package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Withdrawal use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// WithdrawalStatusRequest is the admin review payload
type WithdrawalStatusRequest struct {
	Status string `json:"status" binding:"required"` // processing, completed or rejected
}

// RequestWithdrawalHandler holds an amount for cash-out
func RequestWithdrawalHandler(withdrawals *service.WithdrawalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.WithdrawalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		w, err := withdrawals.Request(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
	}
}

// ListWithdrawalsHandler lists the caller's withdrawals
func ListWithdrawalsHandler(withdrawals *service.WithdrawalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := withdrawals.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawals": list})
	}
}

// UpdateWithdrawalHandler moves a withdrawal to a new status (admin)
func UpdateWithdrawalHandler(withdrawals *service.WithdrawalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req WithdrawalStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		w, err := withdrawals.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	}
}
