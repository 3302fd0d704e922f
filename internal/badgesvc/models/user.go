package models

import (
	"time"
)

// User represents the users table in the database. One row per badge
// registration; badge_id is not unique.
type User struct {
	ID           int64     `json:"id"`
	BadgeID      string    `json:"badge_id"`
	DisplayName  string    `json:"display_name"`
	FirstName    *string   `json:"first_name"`
	LastName     *string   `json:"last_name"`
	Email        *string   `json:"email"`
	Role         *string   `json:"role"`
	Department   *string   `json:"department"`
	Phone        *string   `json:"phone"`
	City         *string   `json:"city"`
	Organization *string   `json:"organization"`
	CreatedAt    time.Time `json:"created_at"`
}
