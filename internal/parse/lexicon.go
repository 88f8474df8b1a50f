// Package parse contains the token parsers that extract clock times,
// month/day dates, and travel signals from free-form lines. All parsers are
// pure functions over an injected, read-only Lexicon; absence of a token is
// a normal "no match" result, never an error.
package parse

import (
	"strings"
	"time"
)

// Lexicon is the read-only reference data the parsers consult: the month
// alias table, the travel keyword set, and a city/country gazetteer with
// common country abbreviations. It is injected rather than global so tests
// can pin a small fixture table.
type Lexicon struct {
	months         map[string]time.Month
	travelKeywords map[string]struct{}
	places         map[string]struct{}
	countryAliases map[string]string
}

// NewLexicon builds a Lexicon from explicit tables. All keys are matched
// case-insensitively; multi-word place names are matched as word bigrams.
func NewLexicon(months map[string]time.Month, keywords []string, places []string, countryAliases map[string]string) *Lexicon {
	lx := &Lexicon{
		months:         make(map[string]time.Month, len(months)),
		travelKeywords: make(map[string]struct{}, len(keywords)),
		places:         make(map[string]struct{}, len(places)),
		countryAliases: make(map[string]string, len(countryAliases)),
	}
	for k, v := range months {
		lx.months[strings.ToLower(k)] = v
	}
	for _, k := range keywords {
		lx.travelKeywords[strings.ToLower(k)] = struct{}{}
	}
	for _, p := range places {
		lx.places[strings.ToLower(p)] = struct{}{}
	}
	for k, v := range countryAliases {
		lx.countryAliases[strings.ToLower(k)] = strings.ToLower(v)
	}
	return lx
}

// Month resolves a month token ("sep", "Sept.", "september") to a
// time.Month. The trailing period and case are ignored.
func (lx *Lexicon) Month(token string) (time.Month, bool) {
	t := strings.ToLower(strings.Trim(token, ". "))
	m, ok := lx.months[t]
	return m, ok
}

// IsTravelKeyword reports whether word (already lowercased and stripped of
// punctuation) is in the travel keyword set.
func (lx *Lexicon) IsTravelKeyword(word string) bool {
	_, ok := lx.travelKeywords[word]
	return ok
}

// IsPlace reports whether name matches the gazetteer, after mapping country
// abbreviations (US, USA, UK, UAE) to their full names.
func (lx *Lexicon) IsPlace(name string) bool {
	n := strings.ToLower(name)
	if full, ok := lx.countryAliases[n]; ok {
		n = full
	}
	_, ok := lx.places[n]
	return ok
}

var monthAliases = func() map[string]time.Month {
	m := make(map[string]time.Month)
	for i := time.January; i <= time.December; i++ {
		full := strings.ToLower(i.String())
		m[full] = i
		m[full[:3]] = i
	}
	// the one irregular short form people actually write
	m["sept"] = time.September
	return m
}()

var travelKeywords = []string{
	"flight", "fly", "arrive", "depart", "airport", "train", "hotel",
	"check-in", "checkin", "to",
}

var countryAliases = map[string]string{
	"us":  "united states",
	"usa": "united states",
	"uk":  "united kingdom",
	"uae": "united arab emirates",
}

var knownPlaces = []string{
	// countries
	"united states", "united kingdom", "united arab emirates", "france",
	"germany", "spain", "italy", "portugal", "netherlands", "switzerland",
	"austria", "greece", "turkey", "egypt", "india", "china", "japan",
	"south korea", "thailand", "vietnam", "indonesia", "singapore",
	"australia", "canada", "brazil", "mexico",
	// cities
	"paris", "london", "berlin", "madrid", "rome", "lisbon", "amsterdam",
	"barcelona", "vienna", "prague", "zurich", "geneva", "istanbul",
	"cairo", "dubai", "mumbai", "delhi", "bangalore", "chennai",
	"hyderabad", "kolkata", "pune", "goa", "tokyo", "osaka", "kyoto",
	"seoul", "bangkok", "bali", "hanoi", "jakarta", "sydney", "melbourne",
	"toronto", "vancouver", "new york", "san francisco", "los angeles",
	"chicago", "boston", "seattle", "austin", "denver", "miami",
	"hong kong", "shanghai", "beijing", "mexico city", "sao paulo",
}

// DefaultLexicon returns the built-in reference tables: English month names
// and three-letter forms (plus "sept"), the fixed travel keyword set, and a
// gazetteer of common city and country names.
func DefaultLexicon() *Lexicon {
	return NewLexicon(monthAliases, travelKeywords, knownPlaces, countryAliases)
}
