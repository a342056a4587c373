package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Account use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

const maxAvatarSize = 5 << 20 // 5 MiB

// GetProfileHandler returns the caller's profile
func GetProfileHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := wallet.Profile(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

// UpdateProfileHandler edits the display name and favorite game
func UpdateProfileHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProfileUpdate // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		profile, err := wallet.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

// UploadAvatarHandler takes a multipart "avatar" file
func UploadAvatarHandler(wallet *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarSize+1024) // Cap the upload
		fh, err := c.FormFile("avatar")
		if err != nil {
			badRequest(c, "Missing avatar file")
			return
		}
		if fh.Size > maxAvatarSize {
			badRequest(c, "Avatar is too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "Unreadable avatar file")
			return
		}
		defer f.Close()

		profile, err := wallet.SetAvatar(c.Request.Context(), middleware.UserID(c), fh.Filename, fh.Header.Get("Content-Type"), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}
