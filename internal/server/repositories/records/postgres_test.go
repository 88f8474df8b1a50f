package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const selectQ = `(?s)^\s*SELECT\s+settings,\s*lines\s+FROM\s+records\s+WHERE\s+user_id\s*=\s*\$1\s*$`

func TestGet_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"settings", "lines"}).
		AddRow([]byte(`{"travel_enabled":true,"time_format":"12h"}`), []byte(`["9pm gym","Sep 5 Dentist"]`))
	mock.ExpectQuery(selectQ).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.Settings.TravelEnabled {
		t.Fatalf("expected travel enabled, got %+v", got.Settings)
	}
	if len(got.Lines) != 2 || got.Lines[0] != "9pm gym" {
		t.Fatalf("unexpected lines: %v", got.Lines)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGet_MalformedSettings(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"settings", "lines"}).
		AddRow([]byte(`{not json`), []byte(`["line one"]`))
	mock.ExpectQuery(selectQ).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u-1")
	if !errors.Is(err, common.ErrorMalformedRecord) {
		t.Fatalf("want common.ErrorMalformedRecord, got %v", err)
	}
	if got == nil {
		t.Fatal("record must still be returned alongside the error")
	}
	if got.Settings != models.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", got.Settings)
	}
	if len(got.Lines) != 1 || got.Lines[0] != "line one" {
		t.Fatalf("lines must survive a malformed settings blob: %v", got.Lines)
	}
}

func TestGet_MalformedLines(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"settings", "lines"}).
		AddRow([]byte(`{"travel_enabled":false,"time_format":"12h"}`), []byte(`broken`))
	mock.ExpectQuery(selectQ).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u-1")
	if !errors.Is(err, common.ErrorMalformedRecord) {
		t.Fatalf("want common.ErrorMalformedRecord, got %v", err)
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected empty lines, got %v", got.Lines)
	}
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+records\s*\(user_id,\s*settings,\s*lines,\s*updated_at\)`

	mock.ExpectExec(q).
		WithArgs("u-1", []byte(`{"travel_enabled":false,"time_format":"12h"}`), []byte(`["9pm gym"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.UserRecord{UserID: "u-1", Settings: models.DefaultSettings(), Lines: []string{"9pm gym"}}
	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_NilLinesBecomeEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+records\s*\(user_id,\s*settings,\s*lines,\s*updated_at\)`

	mock.ExpectExec(q).
		WithArgs("u-1", []byte(`{"travel_enabled":false,"time_format":"12h"}`), []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.UserRecord{UserID: "u-1", Settings: models.DefaultSettings()}
	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+records\s*\(user_id,\s*settings,\s*lines,\s*updated_at\)`

	mock.ExpectExec(q).
		WithArgs("u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	rec := &models.UserRecord{UserID: "u-1", Settings: models.DefaultSettings(), Lines: []string{}}
	if err := repo.Upsert(context.Background(), rec); err == nil {
		t.Fatal("expected error, got nil")
	}
}
