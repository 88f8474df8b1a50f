// Package ical renders one user's classified lines as an RFC 5545 calendar
// so external calendar apps can subscribe to the day view.
package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/sync"
	"github.com/google/uuid"
)

// uidNamespace seeds the deterministic event UIDs. Rendering the same lines
// twice must yield the same UIDs so subscribers do not see duplicates.
var uidNamespace = uuid.MustParse("6b1e8b9c-3f8e-4b0a-9a93-2f6d54a1c0e7")

// Feed turns lines into a serialized calendar.
type Feed struct {
	classifier *classify.Classifier
	loc        *time.Location
	duration   time.Duration
}

// NewFeed constructs a Feed. duration is the length of timed events.
func NewFeed(cls *classify.Classifier, loc *time.Location, duration time.Duration) *Feed {
	return &Feed{classifier: cls, loc: loc, duration: duration}
}

// Render classifies lines against now and serializes them: timed events for
// the Schedule bucket on now's day, all-day events for Dated and Travel
// lines on their own dates. Lines without a parseable token are left out.
func (f *Feed) Render(lines []string, now time.Time) string {
	now = now.In(f.loc)
	buckets := f.classifier.Classify(lines, now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//daybook//feed//EN")

	for _, line := range buckets.Schedule {
		cl, summary, ok := f.classifier.SplitTime(line)
		if !ok {
			continue
		}
		if summary == "" {
			summary = sync.FallbackSummary
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), cl.Hour, cl.Minute, 0, 0, f.loc)

		ev := cal.AddEvent(eventUID(sync.NewTimedKey(start, summary)))
		ev.SetDtStampTime(start)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(f.duration))
		ev.SetSummary(summary)
	}

	for _, line := range append(append([]string{}, buckets.Dated...), buckets.Travel...) {
		day, summary, ok := f.classifier.SplitDate(line, now)
		if !ok {
			continue
		}
		if summary == "" {
			summary = sync.FallbackSummary
		}

		ev := cal.AddEvent(eventUID(sync.NewAllDayKey(day, summary)))
		ev.SetDtStampTime(day)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(summary)
	}

	return cal.Serialize()
}

func eventUID(key sync.Key) string {
	return uuid.NewSHA1(uidNamespace, []byte(key.Slot+"|"+key.Summary)).String() + "@daybook"
}
