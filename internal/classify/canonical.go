package classify

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/parse"
)

// ClockLabel renders a 24-hour clock in the canonical zero-padded 12-hour
// display form: "09:00 PM".
func ClockLabel(c parse.Clock) string {
	h12 := c.Hour % 12
	if h12 == 0 {
		h12 = 12
	}
	meridiem := "AM"
	if c.Hour >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h12, c.Minute, meridiem)
}

// MonthLabel renders a month in the canonical capitalized three-letter
// form: "Sep".
func MonthLabel(m time.Month) string {
	return m.String()[:3]
}

// CanonicalTime rewrites the first recognized clock token of line into the
// canonical "HH:MM AM|PM" form, leaving the rest of the line untouched.
// Lines without a recognizable time come back unchanged.
func (c *Classifier) CanonicalTime(line string) string {
	cl, start, end, ok := parse.TimeToken(line)
	if !ok {
		return line
	}
	return line[:start] + ClockLabel(cl) + line[end:]
}

// CanonicalMonth rewrites the first recognized month token of line into the
// capitalized three-letter form ("sept." → "Sep"), leaving the rest of the
// line untouched.
func (c *Classifier) CanonicalMonth(line string) string {
	m, start, end, ok := parse.MonthToken(c.lex, line)
	if !ok {
		return line
	}
	return line[:start] + MonthLabel(m) + line[end:]
}
