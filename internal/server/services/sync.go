package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daybook/internal/sync"
)

// CalendarProvider resolves a per-user calendar client. Implementations
// return common.ErrorRemoteUnavailable when the user has no stored
// authorization.
type CalendarProvider interface {
	ClientFor(ctx context.Context, userID string) (sync.CalendarClient, error)
}

// SyncService wires the reconciler to the stored records and the calendar
// provider, one reconciler per call so every call sees fresh credentials.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provider    CalendarProvider
	classifier  *classify.Classifier
	logger      logging.Logger
	loc         *time.Location

	exportDuration time.Duration
	importPageSize int64
}

// NewSyncService constructs a SyncService. The display timezone comes from
// the config and is resolved once at startup.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, provider CalendarProvider,
	cls *classify.Classifier, logger logging.Logger, cfg *config.Config) (*SyncService, error) {

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading display timezone %q: %w", cfg.DisplayTimezone, err)
	}

	return &SyncService{
		db:             db,
		repomanager:    m,
		provider:       provider,
		classifier:     cls,
		logger:         logger,
		loc:            loc,
		exportDuration: cfg.ExportEventDuration,
		importPageSize: cfg.ImportPageSize,
	}, nil
}

// Import pulls one page of today's calendar events into the user's lines.
// cursor continues a previous page; empty starts from the beginning.
func (s *SyncService) Import(ctx context.Context, userID, cursor string) (sync.ImportResult, error) {
	r, err := s.reconcilerFor(ctx, userID)
	if err != nil {
		return sync.ImportResult{}, err
	}
	return r.Import(ctx, r.TodayWindow(), cursor)
}

// Export pushes the user's classified lines into today's calendar window.
func (s *SyncService) Export(ctx context.Context, userID string) (sync.ExportResult, error) {
	r, err := s.reconcilerFor(ctx, userID)
	if err != nil {
		return sync.ExportResult{}, err
	}
	return r.Export(ctx, r.TodayWindow())
}

// AutoSweep runs import then export for every user with a stored calendar
// token. Per-user failures are logged and do not stop the sweep.
func (s *SyncService) AutoSweep(ctx context.Context) {
	userIDs, err := s.repomanager.CalendarTokens(s.db).ListUserIDs(ctx)
	if err != nil {
		s.logger.Error(ctx, "sync sweep: listing connected users", "error", err)
		return
	}

	for _, userID := range userIDs {
		if _, err := s.Import(ctx, userID, ""); err != nil {
			s.logger.Error(ctx, "sync sweep: import failed", "user_id", userID, "error", err)
			continue
		}
		if _, err := s.Export(ctx, userID); err != nil {
			s.logger.Error(ctx, "sync sweep: export failed", "user_id", userID, "error", err)
		}
	}
}

func (s *SyncService) reconcilerFor(ctx context.Context, userID string) (*sync.Reconciler, error) {
	client, err := s.provider.ClientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	store := &recordLineStore{db: s.db, repomanager: s.repomanager, userID: userID}
	return sync.New(store, client, s.classifier, s.loc,
		sync.WithEventDuration(s.exportDuration),
		sync.WithPageSize(s.importPageSize),
	), nil
}

// recordLineStore adapts the records repository to the reconciler's
// LineStore. Sync never changes settings, so Write only replaces the lines.
type recordLineStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userID      string
}

func (s *recordLineStore) Read(ctx context.Context) (sync.Record, error) {
	record, err := s.repomanager.Records(s.db).Get(ctx, s.userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return sync.Record{Lines: []string{}}, nil
		}
		if errors.Is(err, common.ErrorMalformedRecord) {
			return sync.Record{TravelEnabled: record.Settings.TravelEnabled, Lines: record.Lines}, nil
		}
		return sync.Record{}, err
	}
	return sync.Record{TravelEnabled: record.Settings.TravelEnabled, Lines: record.Lines}, nil
}

func (s *recordLineStore) Write(ctx context.Context, rec sync.Record) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.repomanager.Records(tx).Get(ctx, s.userID)
		switch {
		case err == nil || errors.Is(err, common.ErrorMalformedRecord):
		case errors.Is(err, common.ErrorNotFound):
			record = &models.UserRecord{UserID: s.userID, Settings: models.DefaultSettings()}
		default:
			return err
		}
		record.Lines = rec.Lines
		return s.repomanager.Records(tx).Upsert(ctx, record)
	})
}
