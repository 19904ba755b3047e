package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter rune // default ','
	SkipRows  int  // leading rows to skip
}

// ReadCSV reads a CSV export into raw rows. Variable field counts are
// allowed, the recovery engine handles inconsistent arity downstream.
func ReadCSV(r io.Reader, opts CSVOptions) ([]model.RawRow, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []model.RawRow
	i := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if i < opts.SkipRows {
			i++
			continue
		}
		i++
		rows = append(rows, model.RawRow(record))
	}
	return rows, nil
}
