package calendartokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
)

// PostgresRepository implements calendar token storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save upserts the token blob for userID.
func (r *PostgresRepository) Save(ctx context.Context, userID string, token []byte) error {
	query := `
		INSERT INTO calendar_tokens (user_id, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET token = EXCLUDED.token, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the stored token blob for userID, or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	query := `
		SELECT token
		FROM calendar_tokens
		WHERE user_id = $1
	`
	var token []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// Delete removes the stored token for userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `
		DELETE FROM calendar_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListUserIDs returns the IDs of every user with a stored token.
func (r *PostgresRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id
		FROM calendar_tokens
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
