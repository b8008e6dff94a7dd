package models

import "time"

type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"` // never serialized
	RoleID         int    `json:"role_id"`
	OrganizationID *int64 `json:"organization_id,omitempty"` // nil for reviewer/admin accounts

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
