package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
)

// test seam
var recordNow = time.Now

// RecordService owns the per-user record: viewing the classified buckets,
// adding lines, clearing them, and flipping the travel setting.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	classifier  *classify.Classifier
	loc         *time.Location
}

// NewRecordService constructs a RecordService. loc is the display timezone
// classification runs in.
func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, cls *classify.Classifier, loc *time.Location) *RecordService {
	return &RecordService{db: db, repomanager: m, classifier: cls, loc: loc}
}

// View returns the classified buckets and settings of one user. A user
// without a record yet sees empty buckets and default settings; a malformed
// stored settings blob is replaced by defaults instead of failing the view.
func (s *RecordService) View(ctx context.Context, userID string) (classify.Buckets, models.Settings, error) {
	record, err := s.getOrDefault(ctx, s.db, userID)
	if err != nil {
		return classify.Buckets{}, models.Settings{}, err
	}
	buckets := s.classifier.Classify(record.Lines, recordNow().In(s.loc))
	return buckets, record.Settings, nil
}

// Lines returns the raw stored lines of one user, without classification.
func (s *RecordService) Lines(ctx context.Context, userID string) ([]string, error) {
	record, err := s.getOrDefault(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return record.Lines, nil
}

// AddLine appends one trimmed line to the user's record.
func (s *RecordService) AddLine(ctx context.Context, userID, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return common.ErrorInvalidArgument
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.getOrDefault(ctx, tx, userID)
		if err != nil {
			return err
		}
		record.Lines = append(record.Lines, line)
		if err := s.repomanager.Records(tx).Upsert(ctx, record); err != nil {
			return fmt.Errorf("error saving record: %v", err)
		}
		return nil
	})
}

// Reset clears the user's lines, keeping the settings.
func (s *RecordService) Reset(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.getOrDefault(ctx, tx, userID)
		if err != nil {
			return err
		}
		record.Lines = []string{}
		if err := s.repomanager.Records(tx).Upsert(ctx, record); err != nil {
			return fmt.Errorf("error saving record: %v", err)
		}
		return nil
	})
}

// ToggleTravel flips the travel setting and returns the new value.
func (s *RecordService) ToggleTravel(ctx context.Context, userID string) (bool, error) {
	var enabled bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.getOrDefault(ctx, tx, userID)
		if err != nil {
			return err
		}
		record.Settings.TravelEnabled = !record.Settings.TravelEnabled
		enabled = record.Settings.TravelEnabled
		if err := s.repomanager.Records(tx).Upsert(ctx, record); err != nil {
			return fmt.Errorf("error saving record: %v", err)
		}
		return nil
	})
	return enabled, err
}

// getOrDefault loads the record, substituting a fresh one for a missing row
// and default settings for a malformed blob.
func (s *RecordService) getOrDefault(ctx context.Context, db dbx.DBTX, userID string) (*models.UserRecord, error) {
	record, err := s.repomanager.Records(db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.UserRecord{UserID: userID, Settings: models.DefaultSettings(), Lines: []string{}}, nil
		}
		if errors.Is(err, common.ErrorMalformedRecord) {
			return record, nil
		}
		return nil, fmt.Errorf("error loading record: %v", err)
	}
	return record, nil
}
