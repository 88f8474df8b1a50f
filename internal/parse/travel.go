package parse

import "strings"

const wordPunct = ".,;:!?()"

// TravelSignal reports whether line carries a travel signal: a travel
// keyword or a known city/country name anywhere in the line. Matching is
// case-insensitive; place names are checked as single words and as word
// pairs so "New York" and "Hong Kong" resolve.
func TravelSignal(lx *Lexicon, line string) bool {
	words := strings.Fields(line)
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		c := strings.ToLower(strings.Trim(w, wordPunct))
		if c == "" {
			continue
		}
		cleaned = append(cleaned, c)
	}

	for i, w := range cleaned {
		if lx.IsTravelKeyword(w) || lx.IsPlace(w) {
			return true
		}
		if i+1 < len(cleaned) && lx.IsPlace(w+" "+cleaned[i+1]) {
			return true
		}
	}
	return false
}
