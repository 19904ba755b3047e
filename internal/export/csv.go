// Package export serializes cost records to the semicolon-delimited
// interchange format consumed by the site import and the validator.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// Delimiter is the field separator of the interchange format.
const Delimiter = ';'

// header lists the fields in their fixed output order.
var header = []string{
	"year", "id", "region", "facility_name", "address",
	"care_type", "price", "source_url", "validation_status",
}

// WriteRecordsCSV writes records in insertion order. Prices use period
// decimal notation regardless of the comma convention of the inputs.
func WriteRecordsCSV(w io.Writer, records []model.CostRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year),
			r.ID,
			r.Region,
			r.FacilityName,
			r.Address,
			r.CareType,
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			r.SourceURL,
			string(r.ValidationStatus),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write record %s", r.ID)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// ReadRecordsCSV reads a previously exported record file. Columns are
// resolved by header name, so column order does not matter on input.
func ReadRecordsCSV(r io.Reader) ([]model.CostRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv")
	}
	if len(rows) < 2 {
		return nil, eris.New("export: csv has no data rows")
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range header {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("export: missing required column %q", col)
		}
	}

	records := make([]model.CostRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(name string) string { return strings.TrimSpace(row[colIdx[name]]) }

		year, err := strconv.Atoi(get("year"))
		if err != nil {
			return nil, eris.Wrapf(err, "export: parse year %q", get("year"))
		}
		price, err := strconv.ParseFloat(get("price"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "export: parse price %q", get("price"))
		}
		// No record ever carries a non-positive price; NaN or infinite
		// values would also corrupt the category means downstream.
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return nil, eris.Errorf("export: invalid price %q for record %s", get("price"), get("id"))
		}
		status := model.ValidationStatus(get("validation_status"))
		if !status.Valid() {
			return nil, eris.Errorf("export: unknown validation status %q", get("validation_status"))
		}

		records = append(records, model.CostRecord{
			Year:             year,
			ID:               get("id"),
			Region:           get("region"),
			FacilityName:     get("facility_name"),
			Address:          get("address"),
			CareType:         get("care_type"),
			Price:            price,
			SourceURL:        get("source_url"),
			ValidationStatus: status,
		})
	}
	return records, nil
}
