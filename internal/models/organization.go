package models

import "time"

type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}
