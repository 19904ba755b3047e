package parser

import (
	"strings"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// missingCell is how the upstream table extraction marks empty cells.
const missingCell = "nan"

// defaultHeaderKeywords match the header rows of the county cost tables.
var defaultHeaderKeywords = []string{"powiat", "nazwa", "lp."}

// RecoveredRow holds the cells derived from a price-anchored raw row.
type RecoveredRow struct {
	Region         string
	NameAndAddress string
	CareType       string
	PriceText      string
}

// ColumnRecovery locates the price column in a raw row and derives the
// neighboring fields by offset. Absolute indices are unreliable (the
// extraction may prepend or drop a column per table), but the price
// column is the only one whose content parses as a positive amount, so
// its position anchors the rest of the layout.
type ColumnRecovery struct {
	headerKeywords []string
	minFilledCells int
}

// NewColumnRecovery builds a recovery engine. Zero values fall back to
// the defaults used for the county resolutions.
func NewColumnRecovery(headerKeywords []string, minFilledCells int) *ColumnRecovery {
	if len(headerKeywords) == 0 {
		headerKeywords = defaultHeaderKeywords
	}
	if minFilledCells <= 0 {
		minFilledCells = 2
	}
	return &ColumnRecovery{headerKeywords: headerKeywords, minFilledCells: minFilledCells}
}

// Recover derives the semantic columns of a raw row. ok is false for
// header rows, mostly-empty rows, rows without a recoverable price and
// rows without a region; all of these are expected and simply skipped.
func (c *ColumnRecovery) Recover(row model.RawRow) (*RecoveredRow, bool) {
	if len(row) == 0 || c.isHeaderRow(row) || c.filledCells(row) < c.minFilledCells {
		return nil, false
	}

	// Scan backward for the rightmost cell holding a positive price.
	anchor := -1
	for i := len(row) - 1; i >= 0; i-- {
		if v, ok := NormalizePrice(row[i]); ok && v > 0 {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return nil, false
	}

	rec := &RecoveredRow{
		PriceText:      strings.TrimSpace(row[anchor]),
		CareType:       cellAt(row, anchor-1),
		NameAndAddress: cellAt(row, anchor-2),
		Region:         cellAt(row, anchor-3),
	}

	// A record cannot exist without a region.
	if rec.Region == "" || strings.EqualFold(rec.Region, missingCell) {
		return nil, false
	}
	return rec, true
}

// isHeaderRow reports whether the joined, lowercased cells contain any
// of the table header keywords.
func (c *ColumnRecovery) isHeaderRow(row model.RawRow) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	for _, kw := range c.headerKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// filledCells counts cells with non-empty, non-missing content.
func (c *ColumnRecovery) filledCells(row model.RawRow) int {
	n := 0
	for _, cell := range row {
		s := strings.TrimSpace(cell)
		if s != "" && !strings.EqualFold(s, missingCell) {
			n++
		}
	}
	return n
}

// cellAt returns the trimmed cell at idx, or "" when the anchor sits too
// close to the row start for the offset to exist.
func cellAt(row model.RawRow, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
