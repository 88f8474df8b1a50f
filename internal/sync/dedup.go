package sync

import (
	"strings"
	"time"
)

const (
	timedSlotLayout  = "2006-01-02T15:04"
	allDaySlotLayout = "2006-01-02"
)

// Key identifies an event for deduplication. Two events with the same start
// slot and the same summary text are considered the same event; this is an
// approximation by summary equality, good enough to keep repeated syncs from
// piling up duplicates.
type Key struct {
	Slot    string
	Summary string
}

// NewTimedKey builds the key for a timed event. The start is truncated to
// the minute in its own location and the summary is compared
// case-insensitively.
func NewTimedKey(start time.Time, summary string) Key {
	return Key{
		Slot:    start.Truncate(time.Minute).Format(timedSlotLayout),
		Summary: normalizeSummary(summary),
	}
}

// NewAllDayKey builds the key for an all-day event on the given day.
func NewAllDayKey(day time.Time, summary string) Key {
	return Key{
		Slot:    day.Format(allDaySlotLayout),
		Summary: normalizeSummary(summary),
	}
}

func normalizeSummary(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type keySet map[Key]struct{}

func (s keySet) has(k Key) bool {
	_, ok := s[k]
	return ok
}

func (s keySet) add(k Key) {
	s[k] = struct{}{}
}
