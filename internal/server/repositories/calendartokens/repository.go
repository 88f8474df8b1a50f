// Package calendartokens declares the repository contract for stored OAuth
// tokens of connected Google calendars.
package calendartokens

import "context"

// Repository stores one opaque token blob per user. ListUserIDs feeds the
// background sweep, which syncs every connected user.
type Repository interface {
	Save(ctx context.Context, userID string, token []byte) error
	Get(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
	ListUserIDs(ctx context.Context) ([]string, error)
}
