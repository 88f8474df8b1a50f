package parse

import (
	"regexp"
	"strconv"
	"time"
)

var dateRe = regexp.MustCompile(`(?i)\b([A-Za-z]{3,9})(\.?)\s+(\d{1,2})\b`)

// MonthDay extracts the first recognizable "Month Day" token from line and
// resolves it against the supplied year. The month token is normalized via
// the lexicon's alias table before resolution. A syntactically date-like
// token that is not a real calendar date ("Feb 31") is a miss, not an
// error.
//
// Resolving against the caller's current year is deliberate: "Dec 31"
// parsed in January lands in the new year, not the nearest future one.
func MonthDay(lx *Lexicon, line string, year int) (time.Time, bool) {
	for _, m := range dateRe.FindAllStringSubmatch(line, -1) {
		month, ok := lx.Month(m[1])
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if d, ok := calendarDate(year, month, day); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// MonthToken returns the first recognized month token in line and the byte
// span it occupies, including a trailing period when present, for canonical
// rewriting ("Sept." → "Sep").
func MonthToken(lx *Lexicon, line string) (time.Month, int, int, bool) {
	for _, idx := range dateRe.FindAllStringSubmatchIndex(line, -1) {
		month, ok := lx.Month(group(line, idx, 1))
		if !ok {
			continue
		}
		// span covers the month word plus the optional period
		end := idx[3]
		if idx[4] >= 0 && idx[5] > end {
			end = idx[5]
		}
		return month, idx[2], end, true
	}
	return 0, 0, 0, false
}

// DateToken is like MonthDay but also reports the span of the whole
// "Month Day" token, so callers can strip it out of a line.
func DateToken(lx *Lexicon, line string, year int) (time.Time, int, int, bool) {
	for _, idx := range dateRe.FindAllStringSubmatchIndex(line, -1) {
		month, ok := lx.Month(group(line, idx, 1))
		if !ok {
			continue
		}
		day, err := strconv.Atoi(group(line, idx, 3))
		if err != nil {
			continue
		}
		if d, ok := calendarDate(year, month, day); ok {
			return d, idx[0], idx[1], true
		}
	}
	return time.Time{}, 0, 0, false
}

// calendarDate builds a date and rejects combinations time.Date would
// silently normalize (Feb 31 → Mar 3).
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
