// Package models contains the server-side persistence records that are not
// shared with the client.
package models

import "time"

// User is a registered account. PasswordHash is an encoded argon2id hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
