// Package api exposes the PAYWIN services over HTTP with gin.
package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"paywin/internal/game"       // Game rule errors
	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/payment"    // Provider errors
	"paywin/internal/repository" // Storage errors
	"paywin/internal/service"    // Use case errors
	"paywin/internal/storage"    // Object storage errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps a domain error to an HTTP status. Zero means unexpected.
func statusOf(err error) int {
	switch {
	case errors.Is(err, game.ErrBetTooSmall),
		errors.Is(err, game.ErrBetTooLarge),
		errors.Is(err, game.ErrInvalidChoice),
		errors.Is(err, game.ErrInvalidBombCount),
		errors.Is(err, game.ErrInvalidCell),
		errors.Is(err, game.ErrCellAlreadyRevealed),
		errors.Is(err, game.ErrUnknownVariant),
		errors.Is(err, game.ErrUnknownGame),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrWithdrawalTooSmall),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, game.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrVIPRequired):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, game.ErrGameNotAvailable),
		errors.Is(err, service.ErrRecipientNotFound),
		errors.Is(err, service.ErrCodeNotFound),
		errors.Is(err, service.ErrRoundNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCodeUsed),
		errors.Is(err, service.ErrRoundInProgress),
		errors.Is(err, service.ErrWithdrawalFinal),
		errors.Is(err, game.ErrRoundFinished),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrDisabled),
		errors.Is(err, payment.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondError writes {"error": ...} for err. Unexpected errors are logged and
// hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	logrus.WithFields(logrus.Fields{
		"user_id": middleware.UserID(c), // Zero on public routes
		"method":  c.Request.Method,
		"path":    c.FullPath(),
	}).WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// badRequest answers a malformed body or query
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
