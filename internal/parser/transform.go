package parser

import (
	"go.uber.org/zap"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// Stats summarizes one transform pass for the operator.
type Stats struct {
	RowsIn     int `json:"rows_in"`
	RecordsOut int `json:"records_out"`
}

// Transform runs the full row-to-record pipeline over a batch of raw
// rows. Rows that yield no record (headers, empty rows, missing price or
// region) are skipped silently; only the in/out counts reflect them.
// Output order follows input order and duplicates are kept.
func Transform(rows []model.RawRow, year int, sourceURL string, recovery *ColumnRecovery) ([]model.CostRecord, Stats) {
	if recovery == nil {
		recovery = NewColumnRecovery(nil, 0)
	}

	records := make([]model.CostRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := recovery.Recover(row)
		if !ok {
			continue
		}
		record, ok := BuildRecord(rec, year, sourceURL)
		if !ok {
			continue
		}
		records = append(records, *record)
	}

	stats := Stats{RowsIn: len(rows), RecordsOut: len(records)}
	zap.L().Info("parser: transform complete",
		zap.Int("rows_in", stats.RowsIn),
		zap.Int("records_out", stats.RecordsOut),
		zap.Int("year", year),
	)
	return records, stats
}
