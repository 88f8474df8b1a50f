// Package classify assigns free-form lines to one of four buckets
// (Schedule, Dated, Travel, Other) and rewrites recognized time/date tokens
// into one canonical display form. Classification is a pure function of
// (lines, now): no side effects, deterministic, idempotent.
package classify

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/parse"
)

// Category is the classification outcome for a single line. Every line maps
// to exactly one category.
type Category string

const (
	CategorySchedule Category = "schedule"
	CategoryDated    Category = "dated"
	CategoryTravel   Category = "travel"
	CategoryOther    Category = "other"
)

// Buckets holds the classified lines. Schedule is ordered by time of day,
// Dated and Travel by date; Other preserves insertion order.
type Buckets struct {
	Schedule []string `json:"schedule"`
	Dated    []string `json:"dated"`
	Travel   []string `json:"travel"`
	Other    []string `json:"other"`
}

var goalRe = regexp.MustCompile(`(?i)^\s*(goal:|to\s)`)

// Classifier applies the classification rules over an injected lexicon.
type Classifier struct {
	lex   *parse.Lexicon
	rules []rule
}

// A rule is one row of the ordered decision table. The first matching rule
// decides the category; the ordering is load-bearing (a goal marker beats a
// clock time, a clock time beats a date).
type rule struct {
	name     string
	category Category
	matches  func(c *Classifier, line string, now time.Time) bool
}

// New returns a Classifier over the given lexicon.
func New(lex *parse.Lexicon) *Classifier {
	c := &Classifier{lex: lex}
	c.rules = []rule{
		{"goal-marker", CategoryOther, func(_ *Classifier, line string, _ time.Time) bool {
			return goalRe.MatchString(line)
		}},
		{"timed", CategorySchedule, func(_ *Classifier, line string, _ time.Time) bool {
			_, ok := parse.Time(line)
			return ok
		}},
		{"dated-travel", CategoryTravel, func(c *Classifier, line string, now time.Time) bool {
			if _, ok := parse.MonthDay(c.lex, line, now.Year()); !ok {
				return false
			}
			return parse.TravelSignal(c.lex, line)
		}},
		{"dated", CategoryDated, func(c *Classifier, line string, now time.Time) bool {
			_, ok := parse.MonthDay(c.lex, line, now.Year())
			return ok
		}},
	}
	return c
}

// Categorize runs the decision table for a single line. Lines matching no
// rule fall through to Other.
func (c *Classifier) Categorize(line string, now time.Time) Category {
	for _, r := range c.rules {
		if r.matches(c, line, now) {
			return r.category
		}
	}
	return CategoryOther
}

// Classify partitions lines into buckets, sorts each bucket, and rewrites
// the first recognized token of each Schedule/Dated/Travel line into its
// canonical form. Sorting is stable, so lines with equal keys keep their
// original relative order; lines whose sort key cannot be parsed sort last.
func (c *Classifier) Classify(lines []string, now time.Time) Buckets {
	b := Buckets{
		Schedule: []string{},
		Dated:    []string{},
		Travel:   []string{},
		Other:    []string{},
	}

	for _, line := range lines {
		switch c.Categorize(line, now) {
		case CategorySchedule:
			b.Schedule = append(b.Schedule, line)
		case CategoryTravel:
			b.Travel = append(b.Travel, line)
		case CategoryDated:
			b.Dated = append(b.Dated, line)
		default:
			b.Other = append(b.Other, line)
		}
	}

	sort.SliceStable(b.Schedule, func(i, j int) bool {
		return clockKey(b.Schedule[i]) < clockKey(b.Schedule[j])
	})
	c.sortByDate(b.Dated, now)
	c.sortByDate(b.Travel, now)

	for i, line := range b.Schedule {
		b.Schedule[i] = c.CanonicalTime(line)
	}
	for i, line := range b.Dated {
		b.Dated[i] = c.CanonicalMonth(line)
	}
	for i, line := range b.Travel {
		b.Travel[i] = c.CanonicalMonth(line)
	}

	return b
}

// FirstClock returns the sorting time of day for a line, if any.
func (c *Classifier) FirstClock(line string) (parse.Clock, bool) {
	return parse.Time(line)
}

// FirstDate returns the first recognized date of a line resolved against
// now's year, if any.
func (c *Classifier) FirstDate(line string, now time.Time) (time.Time, bool) {
	return parse.MonthDay(c.lex, line, now.Year())
}

// SplitTime returns the first recognized clock time of a line together with
// the line text minus that time token, trimmed. Text on both sides of the
// token is kept, so a mid-line time does not eat the words before it.
func (c *Classifier) SplitTime(line string) (parse.Clock, string, bool) {
	cl, start, end, ok := parse.TimeToken(line)
	if !ok {
		return parse.Clock{}, "", false
	}
	rest := strings.TrimSpace(strings.TrimSpace(line[:start]) + " " + strings.TrimSpace(line[end:]))
	return cl, rest, true
}

// SplitDate returns the first recognized date of a line together with the
// line text minus that date token, trimmed. Used when a dated line becomes
// an event title.
func (c *Classifier) SplitDate(line string, now time.Time) (time.Time, string, bool) {
	d, start, end, ok := parse.DateToken(c.lex, line, now.Year())
	if !ok {
		return time.Time{}, "", false
	}
	rest := strings.TrimSpace(strings.TrimSpace(line[:start]) + " " + strings.TrimSpace(line[end:]))
	return d, rest, true
}

func (c *Classifier) sortByDate(lines []string, now time.Time) {
	sort.SliceStable(lines, func(i, j int) bool {
		return c.dateKey(lines[i], now).Before(c.dateKey(lines[j], now))
	})
}

// clockKey maps a line to a sortable minute-of-day; unparseable lines get a
// key past any real time so they land at the end.
func clockKey(line string) int {
	cl, ok := parse.Time(line)
	if !ok {
		return 24 * 60
	}
	return cl.Hour*60 + cl.Minute
}

func (c *Classifier) dateKey(line string, now time.Time) time.Time {
	d, ok := parse.MonthDay(c.lex, line, now.Year())
	if !ok {
		return maxDate
	}
	return d
}

var maxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
