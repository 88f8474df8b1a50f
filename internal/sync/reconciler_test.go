package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncNow = time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

type fakeStore struct {
	rec      Record
	writes   int
	readErr  error
	writeErr error
}

func (s *fakeStore) Read(_ context.Context) (Record, error) {
	return s.rec, s.readErr
}

func (s *fakeStore) Write(_ context.Context, rec Record) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.rec = rec
	s.writes++
	return nil
}

type fakeCreated struct {
	summary     string
	description string
	start       time.Time
	end         time.Time
	allDay      bool
}

type fakeCalendar struct {
	pages          map[string]Page
	created        []fakeCreated
	listErr        error
	createErr      error
	failOnCreate   int // 1-based create call that fails, 0 never
	reflectCreated bool
}

func (c *fakeCalendar) ListEvents(_ context.Context, _ Window, cursor string, _ int64) (Page, error) {
	if c.listErr != nil {
		return Page{}, c.listErr
	}
	page := c.pages[cursor]
	if c.reflectCreated && cursor == "" {
		for _, ev := range c.created {
			page.Events = append(page.Events, RemoteEvent{
				Summary:     ev.summary,
				Description: ev.description,
				Start:       ev.start,
				AllDay:      ev.allDay,
			})
		}
	}
	return page, nil
}

func (c *fakeCalendar) CreateEvent(_ context.Context, summary, description string, start, end time.Time) (string, error) {
	if c.failOnCreate > 0 && len(c.created)+1 == c.failOnCreate {
		return "", c.createErr
	}
	c.created = append(c.created, fakeCreated{summary: summary, description: description, start: start, end: end})
	return fmt.Sprintf("evt-%d", len(c.created)), nil
}

func (c *fakeCalendar) CreateAllDayEvent(_ context.Context, summary, description string, day time.Time) (string, error) {
	if c.failOnCreate > 0 && len(c.created)+1 == c.failOnCreate {
		return "", c.createErr
	}
	c.created = append(c.created, fakeCreated{summary: summary, description: description, start: day, allDay: true})
	return fmt.Sprintf("evt-%d", len(c.created)), nil
}

func newTestReconciler(store *fakeStore, cal *fakeCalendar, opts ...Option) *Reconciler {
	cls := classify.New(parse.DefaultLexicon())
	opts = append([]Option{WithNowFunc(func() time.Time { return syncNow })}, opts...)
	return New(store, cal, cls, time.UTC, opts...)
}

func TestImport_RendersAndAppendsLines(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"existing note"}}}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {Events: []RemoteEvent{
			{Summary: "Standup", Start: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)},
			{Summary: "Dentist", Start: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), AllDay: true},
		}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Import(context.Background(), r.TodayWindow(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.AddedTimed)
	assert.Equal(t, 1, res.AddedDated)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{"existing note", "02:30 PM Standup", "Sep 5 Dentist"}, store.rec.Lines)
	assert.Equal(t, 1, store.writes, "whole record written once")
}

func TestImport_SkipsOwnEvents(t *testing.T) {
	store := &fakeStore{}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {Events: []RemoteEvent{
			{Summary: "gym", Description: "Created-By:Daybook export", Start: syncNow},
		}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Import(context.Background(), r.TodayWindow(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, store.rec.Lines)
	assert.Equal(t, 0, store.writes, "no write when nothing was added")
}

func TestImport_DedupIsCaseInsensitive(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"02:30 pm standup"}}}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {Events: []RemoteEvent{
			{Summary: "Standup", Start: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)},
		}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Import(context.Background(), r.TodayWindow(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"02:30 pm standup"}, store.rec.Lines)
}

func TestImport_SkipsEmptySummaries(t *testing.T) {
	store := &fakeStore{}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {Events: []RemoteEvent{{Summary: "   ", Start: syncNow}}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Import(context.Background(), r.TodayWindow(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, store.writes)
}

func TestImport_PassesCursorThrough(t *testing.T) {
	store := &fakeStore{}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {
			Events:     []RemoteEvent{{Summary: "one", Start: syncNow}},
			NextCursor: "page-2",
		},
		"page-2": {Events: []RemoteEvent{{Summary: "two", Start: syncNow}}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Import(context.Background(), r.TodayWindow(), "")
	require.NoError(t, err)
	assert.Equal(t, "page-2", res.NextCursor)
	require.Len(t, store.rec.Lines, 1)

	res, err = r.Import(context.Background(), r.TodayWindow(), res.NextCursor)
	require.NoError(t, err)
	assert.Empty(t, res.NextCursor)
	assert.Len(t, store.rec.Lines, 2)
}

func TestImport_ListFailure(t *testing.T) {
	boom := errors.New("remote down")
	store := &fakeStore{}
	cal := &fakeCalendar{listErr: boom}
	r := newTestReconciler(store, cal)

	_, err := r.Import(context.Background(), r.TodayWindow(), "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.writes)
}

func TestExport_CreatesTimedEvents(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9pm gym", "10:00 AM Standup"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"evt-1", "evt-2"}, res.EventRefs)
	require.Len(t, cal.created, 2)

	first := cal.created[0]
	assert.Equal(t, "Standup", first.summary)
	assert.Equal(t, DefaultProvenanceTag, first.description)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), first.start)
	assert.Equal(t, first.start.Add(time.Hour), first.end)

	second := cal.created[1]
	assert.Equal(t, "gym", second.summary)
	assert.Equal(t, time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC), second.start)
}

func TestExport_MidLineTimeKeepsSurroundingText(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"Standup 9 AM", "Team sync 9:30 AM daily"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	require.Len(t, cal.created, 2)

	first := cal.created[0]
	assert.Equal(t, "Standup", first.summary)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), first.start)

	second := cal.created[1]
	assert.Equal(t, "Team sync daily", second.summary)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC), second.start)
}

func TestExport_MaxExportCapsTimedLines(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9pm gym", "10:00 AM Standup", "1pm lunch"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal, WithMaxExport(2))

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	require.Len(t, cal.created, 2)
	assert.Equal(t, "Standup", cal.created[0].summary)
	assert.Equal(t, "lunch", cal.created[1].summary)
}

func TestExport_CustomDurationAndTag(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"10:00 AM Standup"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal,
		WithEventDuration(30*time.Minute),
		WithProvenanceTag("made-by:test"),
	)

	_, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	require.Len(t, cal.created, 1)
	assert.Equal(t, "made-by:test", cal.created[0].description)
	assert.Equal(t, 30*time.Minute, cal.created[0].end.Sub(cal.created[0].start))
}

func TestExport_FallbackSummary(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"10:00 AM"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal)

	_, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	require.Len(t, cal.created, 1)
	assert.Equal(t, FallbackSummary, cal.created[0].summary)
}

func TestExport_SkipsEventsAlreadyRemote(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9pm gym"}}}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {Events: []RemoteEvent{
			{Summary: "Gym", Start: time.Date(2026, 8, 31, 21, 0, 30, 0, time.UTC)},
		}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, cal.created)
}

func TestExport_DrainsAllRemotePages(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9pm gym"}}}
	cal := &fakeCalendar{pages: map[string]Page{
		"": {
			Events:     []RemoteEvent{{Summary: "unrelated", Start: syncNow}},
			NextCursor: "p2",
		},
		"p2": {Events: []RemoteEvent{
			{Summary: "gym", Start: time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC)},
		}},
	}}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created, "duplicate on a later page must be seen")
}

func TestExport_BatchDoesNotDuplicateItself(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9:00 PM gym", "9pm gym"}}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
}

func TestExport_Idempotent(t *testing.T) {
	store := &fakeStore{rec: Record{Lines: []string{"9pm gym", "10:00 AM Standup"}}}
	cal := &fakeCalendar{reflectCreated: true}
	r := newTestReconciler(store, cal)

	first, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, cal.created, 2)
}

func TestExport_AllDayGatedByTravelSetting(t *testing.T) {
	lines := []string{"Sep 5 Board meeting", "Sep 21 flight to Paris"}

	store := &fakeStore{rec: Record{TravelEnabled: false, Lines: lines}}
	cal := &fakeCalendar{}
	r := newTestReconciler(store, cal)
	res, err := r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Empty(t, cal.created)

	store = &fakeStore{rec: Record{TravelEnabled: true, Lines: lines}}
	cal = &fakeCalendar{}
	r = newTestReconciler(store, cal)
	res, err = r.Export(context.Background(), r.TodayWindow())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, cal.created, 2)

	assert.True(t, cal.created[0].allDay)
	assert.Equal(t, "Board meeting", cal.created[0].summary)
	assert.Equal(t, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), cal.created[0].start)
	assert.Equal(t, "flight to Paris", cal.created[1].summary)
}

func TestExport_PartialFailureKeepsCreated(t *testing.T) {
	boom := errors.New("quota exceeded")
	store := &fakeStore{rec: Record{Lines: []string{"10:00 AM Standup", "9pm gym"}}}
	cal := &fakeCalendar{createErr: boom, failOnCreate: 2}
	r := newTestReconciler(store, cal)

	res, err := r.Export(context.Background(), r.TodayWindow())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Created, "work done before the failure is kept")
	assert.Len(t, cal.created, 1)
}

func TestTodayWindow(t *testing.T) {
	r := newTestReconciler(&fakeStore{}, &fakeCalendar{})
	w := r.TodayWindow()
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))
}

func TestDedupKeys(t *testing.T) {
	a := NewTimedKey(time.Date(2026, 8, 31, 21, 0, 45, 0, time.UTC), "  Gym ")
	b := NewTimedKey(time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC), "gym")
	assert.Equal(t, a, b, "seconds and summary case must not matter")

	c := NewAllDayKey(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), "Dentist")
	d := NewAllDayKey(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), "dentist")
	assert.Equal(t, c, d)
	assert.NotEqual(t, a, c)
}
