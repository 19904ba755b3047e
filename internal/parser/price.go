// Package parser recovers structured cost records from raw table rows.
//
// Source tables come out of county council resolutions with inconsistent
// column counts, merged cells and free-text prices, so every step here is
// heuristic: prices are cleaned token by token, and the row layout is
// derived from the position of the price column rather than a schema.
package parser

import (
	"math"
	"strconv"
	"strings"
)

// priceCleaner strips currency markers and typographic noise from a price
// token before numeric parsing.
var priceCleaner = strings.NewReplacer(
	"zł", "",
	"pln", "",
	" ", "",
	" ", "",
	"*", "",
	"(", "",
	")", "",
)

// NormalizePrice converts a free-text monetary token into a canonical
// amount rounded to two decimal places. ok is false when nothing numeric
// could be recovered; a legitimate zero amount parses with ok=true, so
// callers can tell "free" apart from "unparseable".
func NormalizePrice(token string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return 0, false
	}
	s = priceCleaner.Replace(s)

	// A single comma with no period is the Polish decimal separator.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	// Thousands separators merged into the token leave extra periods.
	// Only the last one is the decimal point; drop the rest.
	for strings.Count(s, ".") > 1 {
		s = strings.Replace(s, ".", "", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "nan" and "inf" spellings; neither is a price.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Round(v*100) / 100, true
}
