package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile Model
type Profile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Email          string    `gorm:"size:191;uniqueIndex;not null" json:"email"` // Unique login email
	Password       string    `gorm:"not null" json:"-"`                          // Hashed password
	FullName       string    `gorm:"size:191" json:"full_name"`                  // Display name
	AvatarURL      string    `json:"avatar_url"`                                 // Public avatar URL
	Role           string    `gorm:"size:16;default:user" json:"role"`           // Role: user or admin
	Balance        int64     `gorm:"not null;default:0;index" json:"balance"`    // Spendable credit
	TotalWithdrawn int64     `gorm:"not null;default:0" json:"total_withdrawn"`  // Sum of completed withdrawals
	FavoriteGame   string    `gorm:"size:32" json:"favorite_game"`               // Game shown first in the catalog
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
