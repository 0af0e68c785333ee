package domain

import "time"

// User represents a registered identity. PasswordHash is never sent to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
