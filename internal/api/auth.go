package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/service" // Account use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password, 8-72 chars
	FullName string `json:"full_name"`                   // Display name
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// RegisterHandler creates a profile
func RegisterHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		profile, err := wallet.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"profile": profile}) // Return the new profile
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		token, profile, err := wallet.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile}) // Return token and profile
	}
}
