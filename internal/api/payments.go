package api

import (
	"io"       // Raw webhook body
	"net/http" // HTTP status codes

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/payment"    // Signature header
	"paywin/internal/service"    // Payment use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

const maxWebhookBody = 64 << 10 // 64 KiB

// DepositRequest starts a provider top-up
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"` // Deposit amount
}

// InitiatePaymentHandler creates a pending payment and returns the checkout URL
func InitiatePaymentHandler(payments *service.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DepositRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		p, err := payments.Initiate(c.Request.Context(), middleware.UserID(c), req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"payment": p, "redirect_url": p.RedirectURL})
	}
}

// PaymentWebhookHandler settles a payment from a signed provider callback.
// The signature covers the raw body, so it is read before any decoding.
func PaymentWebhookHandler(payments *service.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			badRequest(c, "Unreadable body")
			return
		}
		p, err := payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(payment.SignatureHeader))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": p.Status})
	}
}
