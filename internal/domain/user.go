package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for human accounts that log in through the
// dashboard or the agent companion app.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	Permissions  []string
	AuthLevel    AuthLevel
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
