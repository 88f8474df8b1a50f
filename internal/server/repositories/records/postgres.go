// Package records provides the PostgreSQL-backed repository for per-user
// records. Settings and lines are stored as jsonb columns in one row per
// user; writes are last-write-wins upserts.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the record for userID. A missing row returns
// common.ErrorNotFound. A settings or lines blob that fails to unmarshal
// returns the record with defaults substituted for the broken part together
// with common.ErrorMalformedRecord.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserRecord, error) {
	query := `
		SELECT settings, lines
		FROM records
		WHERE user_id = $1
	`
	var rawSettings, rawLines []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&rawSettings, &rawLines); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	record := &models.UserRecord{UserID: userID, Settings: models.DefaultSettings(), Lines: []string{}}

	malformed := false
	if err := json.Unmarshal(rawSettings, &record.Settings); err != nil {
		record.Settings = models.DefaultSettings()
		malformed = true
	}
	if err := json.Unmarshal(rawLines, &record.Lines); err != nil {
		record.Lines = []string{}
		malformed = true
	}
	if malformed {
		return record, common.ErrorMalformedRecord
	}
	return record, nil
}

// Upsert writes the whole record for record.UserID, creating the row if it
// does not exist yet.
func (r *PostgresRepository) Upsert(ctx context.Context, record *models.UserRecord) error {
	settings, err := json.Marshal(record.Settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	lines := record.Lines
	if lines == nil {
		lines = []string{}
	}
	rawLines, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshaling lines: %w", err)
	}

	query := `
		INSERT INTO records (user_id, settings, lines, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			settings = EXCLUDED.settings,
			lines = EXCLUDED.lines,
			updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, record.UserID, settings, rawLines); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
