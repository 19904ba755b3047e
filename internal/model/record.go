// Package model defines the data types shared across the cost toolchain.
package model

// ValidationStatus classifies a cost record after anomaly validation.
type ValidationStatus string

const (
	StatusPending            ValidationStatus = "pending"
	StatusOK                 ValidationStatus = "ok"
	StatusAnomalyRange       ValidationStatus = "anomaly_range"
	StatusAnomalyStatistical ValidationStatus = "anomaly_statistical"
)

// Valid reports whether s is one of the defined statuses.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusOK, StatusAnomalyRange, StatusAnomalyStatistical:
		return true
	}
	return false
}

// RawRow is one extracted table row. Column count varies between source
// tables; missing cells arrive as "" or "nan".
type RawRow []string

// CostRecord is one facility cost entry recovered from a source table.
// Records produced by the parser always carry Price > 0 and a non-empty
// Region; ValidationStatus starts as pending and is finalized only by
// the anomaly validator.
type CostRecord struct {
	Year             int              `json:"year"`
	ID               string           `json:"id"`
	Region           string           `json:"region"`
	FacilityName     string           `json:"facility_name"`
	Address          string           `json:"address"`
	CareType         string           `json:"care_type"`
	Price            float64          `json:"price"`
	SourceURL        string           `json:"source_url"`
	ValidationStatus ValidationStatus `json:"validation_status"`
}
