package models

import "time"

// RefreshToken is one row of the refresh_tokens table. The token string
// itself is the key; rotation deletes the row and inserts a new one.
type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
