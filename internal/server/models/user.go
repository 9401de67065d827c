package models

import "time"

// User is the credential store's view of an account. Tokens only ever carry
// its ID.
type User struct {
	ID           string
	UserName     string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
}
