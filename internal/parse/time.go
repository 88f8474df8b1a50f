package parse

import (
	"regexp"
	"strconv"
)

// Clock is a canonical 24-hour time of day derived from a line. It is used
// only for sorting and formatting and is never stored.
type Clock struct {
	Hour   int // 0..23
	Minute int // 0..59
}

var (
	timeStartRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{1,2}))?\s?(AM|PM)\b`)
	timeAnyRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{1,2}))?\s?(AM|PM)\b`)
)

// Time extracts the first recognizable clock time from line. A token
// anchored at the start of the line wins over a mid-line token. The hour
// must be 1–12 and the minute, when present, 0–59; "12" maps to 0 before
// the PM adjustment, so "12:00 AM" is 00:00 and "12:00 PM" is 12:00.
// Minutes default to 0 when omitted.
func Time(line string) (Clock, bool) {
	if m := timeStartRe.FindStringSubmatch(line); m != nil {
		if c, ok := clockFromGroups(m[1], m[2], m[3]); ok {
			return c, true
		}
	}
	for _, m := range timeAnyRe.FindAllStringSubmatch(line, -1) {
		if c, ok := clockFromGroups(m[1], m[2], m[3]); ok {
			return c, true
		}
	}
	return Clock{}, false
}

// TimeToken returns the first valid clock token in line together with the
// byte span it occupies, for canonical rewriting. Unlike Time, no special
// preference is needed here: the leading token, when present, is also the
// first match.
func TimeToken(line string) (Clock, int, int, bool) {
	for _, idx := range timeAnyRe.FindAllStringSubmatchIndex(line, -1) {
		c, ok := clockFromGroups(group(line, idx, 1), group(line, idx, 2), group(line, idx, 3))
		if ok {
			return c, idx[0], idx[1], true
		}
	}
	return Clock{}, 0, 0, false
}

func clockFromGroups(hour, minute, meridiem string) (Clock, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 1 || h > 12 {
		return Clock{}, false
	}
	m := 0
	if minute != "" {
		m, err = strconv.Atoi(minute)
		if err != nil || m > 59 {
			return Clock{}, false
		}
	}
	if h == 12 {
		h = 0
	}
	if meridiem == "PM" || meridiem == "pm" || meridiem == "Pm" || meridiem == "pM" {
		h += 12
	}
	return Clock{Hour: h, Minute: m}, true
}

func group(s string, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return s[idx[2*n]:idx[2*n+1]]
}
