package model

import "time"

// Facility is a row of the production dataset maintained by the merge
// workflow. It is keyed by the record id, so merging the same region
// twice replaces rather than duplicates.
type Facility struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Region    string           `json:"region"`
	Address   string           `json:"address"`
	CareType  string           `json:"care_type"`
	Price     float64          `json:"price"`
	Year      int              `json:"year"`
	SourceURL string           `json:"source_url"`
	Status    ValidationStatus `json:"status"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FacilityFromRecord converts a validated cost record into its dataset form.
func FacilityFromRecord(r CostRecord, now time.Time) Facility {
	return Facility{
		ID:        r.ID,
		Name:      r.FacilityName,
		Region:    r.Region,
		Address:   r.Address,
		CareType:  r.CareType,
		Price:     r.Price,
		Year:      r.Year,
		SourceURL: r.SourceURL,
		Status:    r.ValidationStatus,
		UpdatedAt: now,
	}
}

// ImportRunStatus represents the state of a parse/merge invocation.
type ImportRunStatus string

const (
	ImportRunRunning  ImportRunStatus = "running"
	ImportRunComplete ImportRunStatus = "complete"
	ImportRunFailed   ImportRunStatus = "failed"
)

// ImportRun records one invocation of the import workflow: how many raw
// rows came in and how many records survived.
type ImportRun struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	RowsIn     int             `json:"rows_in"`
	RecordsOut int             `json:"records_out"`
	Status     ImportRunStatus `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
