package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTime_Matches(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Clock
	}{
		{"simple", "10:00 AM Standup", Clock{10, 0}},
		{"no minutes", "9 AM gym", Clock{9, 0}},
		{"no space", "9pm gym", Clock{21, 0}},
		{"midnight", "12:00 AM shift", Clock{0, 0}},
		{"noon", "12:00 PM lunch", Clock{12, 0}},
		{"pm shift", "4:30 PM review", Clock{16, 30}},
		{"mid line", "call dentist 3 PM today", Clock{15, 0}},
		{"lowercase", "11:15 am scrum", Clock{11, 15}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Time(tc.line)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTime_Misses(t *testing.T) {
	for _, line := range []string{
		"Meet mom Sep 21",
		"Goal: ship v2",
		"13 PM nonsense",
		"0 AM nothing",
		"9:75 PM broken minutes",
		"just words",
		"",
	} {
		if _, ok := Time(line); ok {
			t.Errorf("Time(%q) matched, want miss", line)
		}
	}
}

func TestTime_LeadingTokenWins(t *testing.T) {
	got, ok := Time("8 AM flight lands 5 PM")
	assert.True(t, ok)
	assert.Equal(t, Clock{8, 0}, got)
}

func TestTime_SkipsInvalidLeadingToken(t *testing.T) {
	// "13 PM" is not a recognizable time; the later valid token is used.
	got, ok := Time("13 PM wrong but 5 PM works")
	assert.True(t, ok)
	assert.Equal(t, Clock{17, 0}, got)
}

func TestTimeToken_Span(t *testing.T) {
	line := "standup at 9:5 am daily"
	c, start, end, ok := TimeToken(line)
	assert.True(t, ok)
	assert.Equal(t, Clock{9, 5}, c)
	assert.Equal(t, "9:5 am", line[start:end])
}

func TestTimeToken_Miss(t *testing.T) {
	_, _, _, ok := TimeToken("no clock here")
	assert.False(t, ok)
}
