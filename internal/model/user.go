// Package model defines domain entities for the application.
package model

import "time"

// User is an account that owns tasks.
// PasswordHash holds the stored form of the secret produced by the configured
// credential scheme and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
