package models

import "time"

// User is a catalog account. PasswordHash is a bcrypt hash, never the clear text.
type User struct {
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
