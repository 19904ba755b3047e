package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	region     TEXT NOT NULL,
	address    TEXT,
	care_type  TEXT,
	price      DOUBLE PRECISION NOT NULL,
	year       INTEGER NOT NULL,
	source_url TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source      TEXT NOT NULL,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	records_out INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_facilities_region ON facilities(region);
CREATE INDEX IF NOT EXISTS idx_facilities_care_type ON facilities(care_type);
CREATE INDEX IF NOT EXISTS idx_import_runs_started_at ON import_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	for _, f := range facilities {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO facilities (id, name, region, address, care_type, price, year, source_url, status, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET
				name = $2, region = $3, address = $4, care_type = $5, price = $6,
				year = $7, source_url = $8, status = $9, updated_at = $10`,
			f.ID, f.Name, f.Region, f.Address, f.CareType, f.Price, f.Year,
			f.SourceURL, string(f.Status), f.UpdatedAt.UTC(),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert facility %s", f.ID)
		}
	}
	return len(facilities), nil
}

func (s *PostgresStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	var f model.Facility
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, region, address, care_type, price, year, source_url, status, updated_at
		 FROM facilities WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.Region, &f.Address, &f.CareType,
		&f.Price, &f.Year, &f.SourceURL, &f.Status, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get facility %s", id)
	}
	return &f, nil
}

func (s *PostgresStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT id, name, region, address, care_type, price, year, source_url, status, updated_at
	          FROM facilities WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Region != "" {
		query += fmt.Sprintf(` AND region = $%d`, argIdx)
		args = append(args, filter.Region)
		argIdx++
	}
	if filter.CareType != "" {
		query += fmt.Sprintf(` AND care_type = $%d`, argIdx)
		args = append(args, filter.CareType)
		argIdx++
	}
	query += ` ORDER BY region, name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list facilities")
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Region, &f.Address, &f.CareType,
			&f.Price, &f.Year, &f.SourceURL, &f.Status, &f.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan facility")
		}
		facilities = append(facilities, f)
	}
	return facilities, eris.Wrap(rows.Err(), "postgres: list facilities iterate")
}

func (s *PostgresStore) CreateImportRun(ctx context.Context, source string) (*model.ImportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_runs (id, source, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, source, string(model.ImportRunRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert import run")
	}

	return &model.ImportRun{
		ID:        id,
		Source:    source,
		Status:    model.ImportRunRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteImportRun(ctx context.Context, runID string, rowsIn, recordsOut int, status model.ImportRunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE import_runs SET rows_in = $1, records_out = $2, status = $3, finished_at = $4 WHERE id = $5`,
		rowsIn, recordsOut, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete import run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("import run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source, rows_in, records_out, status, started_at, finished_at
		 FROM import_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list import runs")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		var finished *time.Time
		if err := rows.Scan(&r.ID, &r.Source, &r.RowsIn, &r.RecordsOut, &r.Status, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import run")
		}
		r.FinishedAt = finished
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list import runs iterate")
}
