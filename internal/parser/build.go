package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// BuildRecord assembles a cost record from recovered columns. ok is
// false when the price text does not normalize to a positive amount; the
// row then contributes nothing.
func BuildRecord(rec *RecoveredRow, year int, sourceURL string) (*model.CostRecord, bool) {
	price, ok := NormalizePrice(rec.PriceText)
	if !ok || price <= 0 {
		return nil, false
	}

	name, address := splitNameAddress(rec.NameAndAddress)

	return &model.CostRecord{
		Year:             year,
		ID:               slug(rec.Region) + "_" + slug(name),
		Region:           rec.Region,
		FacilityName:     name,
		Address:          address,
		CareType:         rec.CareType,
		Price:            price,
		SourceURL:        sourceURL,
		ValidationStatus: model.StatusPending,
	}, true
}

// splitNameAddress splits a combined "name, address" cell on the first
// comma. Address is empty when no comma is present.
func splitNameAddress(s string) (name, address string) {
	name, address, found := strings.Cut(s, ",")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(name), strings.TrimSpace(address)
}

// polishLetters maps the letters NFD decomposition cannot fold.
var polishLetters = strings.NewReplacer("ł", "l", "Ł", "L")

// diacriticFolder strips combining marks after canonical decomposition,
// turning "ą" into "a", "ś" into "s" and so on.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slug normalizes a region or facility name into an id fragment:
// lowercase, diacritics folded to ASCII, spaces replaced by underscores.
// Ids are not guaranteed unique; two facilities with the same name in
// the same region collide, and nothing in the parse path deduplicates.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = polishLetters.Replace(s)
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	return strings.ReplaceAll(s, " ", "_")
}
