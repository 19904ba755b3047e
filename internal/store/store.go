// Package store persists the production facility dataset and import runs.
package store

import (
	"context"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// FacilityFilter specifies criteria for listing facilities.
type FacilityFilter struct {
	Region   string `json:"region,omitempty"`
	CareType string `json:"care_type,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the dataset merge workflow.
type Store interface {
	// Facilities
	UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error)
	GetFacility(ctx context.Context, id string) (*model.Facility, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error)

	// Import runs
	CreateImportRun(ctx context.Context, source string) (*model.ImportRun, error)
	CompleteImportRun(ctx context.Context, runID string, rowsIn, recordsOut int, status model.ImportRunStatus) error
	ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
