package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/parse"
)

const (
	// DefaultProvenanceTag marks events created by the reconciler so a later
	// import does not pull them back in as new lines.
	DefaultProvenanceTag = "created-by:daybook"

	// DefaultEventDuration is the length of exported timed events when the
	// line itself carries no end time (lines never do).
	DefaultEventDuration = time.Hour

	// DefaultPageSize is the listing page size used when none is configured.
	DefaultPageSize = 100

	// FallbackSummary titles an exported event whose line is nothing but a
	// time token.
	FallbackSummary = "Scheduled Event"

	// exportListPageSize is used when draining the remote window for
	// deduplication before an export.
	exportListPageSize = 250
)

// Reconciler moves lines between a LineStore and a CalendarClient in both
// directions. Both operations are idempotent: rerunning them against an
// unchanged remote creates nothing and appends nothing.
type Reconciler struct {
	store      LineStore
	cal        CalendarClient
	classifier *classify.Classifier
	loc        *time.Location

	tag       string
	duration  time.Duration
	pageSize  int64
	maxExport int
	now       func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithProvenanceTag overrides the tag written into created events and
// checked on import.
func WithProvenanceTag(tag string) Option {
	return func(r *Reconciler) { r.tag = tag }
}

// WithEventDuration overrides the duration of exported timed events.
func WithEventDuration(d time.Duration) Option {
	return func(r *Reconciler) { r.duration = d }
}

// WithPageSize overrides the import listing page size.
func WithPageSize(n int64) Option {
	return func(r *Reconciler) { r.pageSize = n }
}

// WithMaxExport caps how many timed lines a single Export considers.
// Zero means no cap.
func WithMaxExport(n int) Option {
	return func(r *Reconciler) { r.maxExport = n }
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(f func() time.Time) Option {
	return func(r *Reconciler) { r.now = f }
}

// New returns a Reconciler over the given collaborators. loc is the display
// timezone: rendered lines and exported event starts are expressed in it.
func New(store LineStore, cal CalendarClient, cls *classify.Classifier, loc *time.Location, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:      store,
		cal:        cal,
		classifier: cls,
		loc:        loc,
		tag:        DefaultProvenanceTag,
		duration:   DefaultEventDuration,
		pageSize:   DefaultPageSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TodayWindow returns the current day in the reconciler's timezone.
func (r *Reconciler) TodayWindow() Window {
	now := r.now().In(r.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ImportResult reports one Import call.
type ImportResult struct {
	AddedTimed int    `json:"added_timed"`
	AddedDated int    `json:"added_dated"`
	Skipped    int    `json:"skipped"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Import fetches one page of calendar events inside w and appends the ones
// not already present as lines. Events the reconciler itself created are
// recognized by the provenance tag and skipped. The record is written once,
// and only when something was added.
func (r *Reconciler) Import(ctx context.Context, w Window, cursor string) (ImportResult, error) {
	var res ImportResult

	page, err := r.cal.ListEvents(ctx, w, cursor, r.pageSize)
	if err != nil {
		return res, fmt.Errorf("listing calendar events: %w", err)
	}
	res.NextCursor = page.NextCursor

	rec, err := r.store.Read(ctx)
	if err != nil {
		return res, fmt.Errorf("reading record: %w", err)
	}

	seen := make(map[string]struct{}, len(rec.Lines))
	for _, ln := range rec.Lines {
		seen[strings.ToLower(ln)] = struct{}{}
	}

	added := false
	for _, ev := range page.Events {
		summary := strings.TrimSpace(ev.Summary)
		if summary == "" || r.tagged(ev.Description) {
			res.Skipped++
			continue
		}

		line := r.renderLine(ev, summary)
		if _, dup := seen[strings.ToLower(line)]; dup {
			res.Skipped++
			continue
		}

		rec.Lines = append(rec.Lines, line)
		seen[strings.ToLower(line)] = struct{}{}
		added = true
		if ev.AllDay {
			res.AddedDated++
		} else {
			res.AddedTimed++
		}
	}

	if added {
		if err := r.store.Write(ctx, rec); err != nil {
			return res, fmt.Errorf("writing record: %w", err)
		}
	}
	return res, nil
}

// ExportResult reports one Export call. EventRefs holds the identifiers of
// the created events in creation order.
type ExportResult struct {
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	EventRefs []string `json:"event_refs,omitempty"`
}

// Export classifies the stored lines and creates the missing calendar
// events inside w. Timed lines become timed events on w's day; when travel
// support is enabled, dated and travel lines become all-day events on their
// own dates. Events already present remotely, and events created earlier in
// the same call, are skipped. A remote failure aborts the call but already
// created events stay created.
func (r *Reconciler) Export(ctx context.Context, w Window) (ExportResult, error) {
	var res ExportResult

	rec, err := r.store.Read(ctx)
	if err != nil {
		return res, fmt.Errorf("reading record: %w", err)
	}

	existing, err := r.drainWindow(ctx, w)
	if err != nil {
		return res, err
	}

	now := r.now().In(r.loc)
	buckets := r.classifier.Classify(rec.Lines, now)

	schedule := buckets.Schedule
	if r.maxExport > 0 && len(schedule) > r.maxExport {
		schedule = schedule[:r.maxExport]
	}

	day := w.Start.In(r.loc)
	for _, ln := range schedule {
		cl, summary, ok := r.classifier.SplitTime(ln)
		if !ok {
			res.Skipped++
			continue
		}
		if summary == "" {
			summary = FallbackSummary
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), cl.Hour, cl.Minute, 0, 0, r.loc)
		key := NewTimedKey(start, summary)
		if existing.has(key) {
			res.Skipped++
			continue
		}

		id, err := r.cal.CreateEvent(ctx, summary, r.tag, start, start.Add(r.duration))
		if err != nil {
			return res, fmt.Errorf("creating event %q: %w", summary, err)
		}
		existing.add(key)
		res.Created++
		res.EventRefs = append(res.EventRefs, id)
	}

	if !rec.TravelEnabled {
		return res, nil
	}

	allDay := make([]string, 0, len(buckets.Dated)+len(buckets.Travel))
	allDay = append(allDay, buckets.Dated...)
	allDay = append(allDay, buckets.Travel...)
	for _, ln := range allDay {
		d, summary, ok := r.classifier.SplitDate(ln, now)
		if !ok {
			res.Skipped++
			continue
		}
		if summary == "" {
			summary = FallbackSummary
		}

		key := NewAllDayKey(d, summary)
		if existing.has(key) {
			res.Skipped++
			continue
		}

		id, err := r.cal.CreateAllDayEvent(ctx, summary, r.tag, d)
		if err != nil {
			return res, fmt.Errorf("creating all-day event %q: %w", summary, err)
		}
		existing.add(key)
		res.Created++
		res.EventRefs = append(res.EventRefs, id)
	}

	return res, nil
}

// drainWindow lists every page of the window and folds the events into a
// key set for deduplication.
func (r *Reconciler) drainWindow(ctx context.Context, w Window) (keySet, error) {
	keys := make(keySet)
	cursor := ""
	for {
		page, err := r.cal.ListEvents(ctx, w, cursor, exportListPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing calendar events: %w", err)
		}
		for _, ev := range page.Events {
			if ev.AllDay {
				keys.add(NewAllDayKey(ev.Start, ev.Summary))
			} else {
				keys.add(NewTimedKey(ev.Start.In(r.loc), ev.Summary))
			}
		}
		if page.NextCursor == "" {
			return keys, nil
		}
		cursor = page.NextCursor
	}
}

// renderLine turns a remote event into its line form: "HH:MM AM|PM Summary"
// for timed events, "Mon D Summary" for all-day events.
func (r *Reconciler) renderLine(ev RemoteEvent, summary string) string {
	if ev.AllDay {
		return fmt.Sprintf("%s %d %s", classify.MonthLabel(ev.Start.Month()), ev.Start.Day(), summary)
	}
	local := ev.Start.In(r.loc)
	label := classify.ClockLabel(parse.Clock{Hour: local.Hour(), Minute: local.Minute()})
	return label + " " + summary
}

func (r *Reconciler) tagged(description string) bool {
	return strings.Contains(strings.ToLower(description), strings.ToLower(r.tag))
}
