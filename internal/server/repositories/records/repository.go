// Package records declares the repository contract for the per-user record:
// the settings blob plus the ordered lines, always moved as a whole.
package records

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/server/models"
)

// Repository defines whole-record access. Get on a malformed settings blob
// returns the record with default settings together with
// common.ErrorMalformedRecord so callers can decide whether to continue.
type Repository interface {
	Get(ctx context.Context, userID string) (*models.UserRecord, error)
	Upsert(ctx context.Context, record *models.UserRecord) error
}
