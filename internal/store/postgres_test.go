package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_UpsertFacilities(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	f := testFacility("krakow_dom_a", "Kraków", "Stały", 5200)
	mock.ExpectExec(`INSERT INTO facilities`).
		WithArgs(f.ID, f.Name, f.Region, f.Address, f.CareType, f.Price, f.Year,
			f.SourceURL, string(f.Status), f.UpdatedAt.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.UpsertFacilities(context.Background(), []model.Facility{f})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertFacilities_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.UpsertFacilities(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFacility(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM facilities WHERE id`).
		WithArgs("krakow_dom_a").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "region", "address", "care_type", "price", "year", "source_url", "status", "updated_at",
		}).AddRow("krakow_dom_a", "Dom A", "Kraków", "ul. A 1", "Stały", 5200.0, 2025, "http://bip.example.pl/u.pdf", "ok", now))

	f, err := s.GetFacility(context.Background(), "krakow_dom_a")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "Dom A", f.Name)
	assert.Equal(t, model.StatusOK, f.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFacility_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM facilities WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "region", "address", "care_type", "price", "year", "source_url", "status", "updated_at",
		}))

	f, err := s.GetFacility(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFacilities_RegionFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM facilities WHERE true AND region`).
		WithArgs("Kraków", 100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "region", "address", "care_type", "price", "year", "source_url", "status", "updated_at",
		}).
			AddRow("krakow_dom_a", "Dom A", "Kraków", "ul. A 1", "Stały", 5200.0, 2025, "", "ok", now).
			AddRow("krakow_dom_b", "Dom B", "Kraków", "ul. B 2", "Dzienny", 4300.0, 2025, "", "ok", now))

	facilities, err := s.ListFacilities(context.Background(), FacilityFilter{Region: "Kraków"})
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	assert.Equal(t, "krakow_dom_b", facilities[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteImportRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE import_runs`).
		WithArgs(10, 8, "complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteImportRun(context.Background(), "missing", 10, 8, model.ImportRunComplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateImportRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO import_runs`).
		WithArgs(pgxmock.AnyArg(), "malopolska_2025.xlsx", "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateImportRun(context.Background(), "malopolska_2025.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.ImportRunRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
