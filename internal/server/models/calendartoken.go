package models

import "time"

// CalendarToken holds one user's stored OAuth token as the raw JSON blob
// the oauth2 package marshals.
type CalendarToken struct {
	UserID    string
	Token     []byte
	UpdatedAt time.Time
}
