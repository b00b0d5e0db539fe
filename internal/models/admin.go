// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin's permission level in the shop back office.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
)

// Admin represents a back-office user with authentication and 2FA fields.
// Shoppers are not stored here — they are identified by Telegram.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"displayName"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsOwner returns true if the admin has the owner role.
func (a *Admin) IsOwner() bool {
	return a.Role == RoleOwner
}

// Needs2FASetup returns true if the admin has not completed 2FA enrollment.
// All admins must set up 2FA on their first login.
func (a *Admin) Needs2FASetup() bool {
	return !a.TOTPEnabled
}
