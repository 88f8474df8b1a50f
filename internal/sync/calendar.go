// Package sync reconciles a user's line record with an external calendar.
// It is transport-agnostic: the calendar and the record storage are supplied
// as interfaces, so the reconciler itself never touches the network or the
// database.
package sync

import (
	"context"
	"time"
)

// Window bounds a calendar query. Start is inclusive, End exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// RemoteEvent is one calendar event as the reconciler sees it. For all-day
// events Start carries the date at midnight and AllDay is set.
type RemoteEvent struct {
	Summary     string
	Description string
	Start       time.Time
	AllDay      bool
}

// Page is one page of a calendar listing. NextCursor is empty when the
// listing is exhausted.
type Page struct {
	Events     []RemoteEvent
	NextCursor string
}

// CalendarClient is the remote calendar surface the reconciler needs.
// Create calls return the identifier of the created event.
type CalendarClient interface {
	ListEvents(ctx context.Context, w Window, cursor string, pageSize int64) (Page, error)
	CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error)
	CreateAllDayEvent(ctx context.Context, summary, description string, day time.Time) (string, error)
}

// Record is the unit of storage: the user's settings that matter to sync
// plus the ordered lines. Reads and writes are whole-record.
type Record struct {
	TravelEnabled bool
	Lines         []string
}

// LineStore reads and writes one user's record. Implementations are bound
// to a user before they reach the reconciler.
type LineStore interface {
	Read(ctx context.Context) (Record, error)
	Write(ctx context.Context, rec Record) error
}
