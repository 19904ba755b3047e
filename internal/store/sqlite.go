package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	region     TEXT NOT NULL,
	address    TEXT,
	care_type  TEXT,
	price      REAL NOT NULL,
	year       INTEGER NOT NULL,
	source_url TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	records_out INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_facilities_region ON facilities(region);
CREATE INDEX IF NOT EXISTS idx_facilities_care_type ON facilities(care_type);
CREATE INDEX IF NOT EXISTS idx_import_runs_started_at ON import_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertFacilities inserts or replaces facilities by id inside one
// transaction. Returns the number of rows written.
func (s *SQLiteStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facilities (id, name, region, address, care_type, price, year, source_url, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, region = excluded.region, address = excluded.address,
			care_type = excluded.care_type, price = excluded.price, year = excluded.year,
			source_url = excluded.source_url, status = excluded.status, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	for _, f := range facilities {
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.Name, f.Region, f.Address, f.CareType, f.Price, f.Year,
			f.SourceURL, string(f.Status), f.UpdatedAt.UTC(),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert facility %s", f.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return len(facilities), nil
}

func (s *SQLiteStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, region, address, care_type, price, year, source_url, status, updated_at
		 FROM facilities WHERE id = ?`,
		id,
	)

	var f model.Facility
	err := row.Scan(&f.ID, &f.Name, &f.Region, &f.Address, &f.CareType,
		&f.Price, &f.Year, &f.SourceURL, &f.Status, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get facility %s", id)
	}
	return &f, nil
}

func (s *SQLiteStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT id, name, region, address, care_type, price, year, source_url, status, updated_at
	          FROM facilities WHERE 1=1`
	var args []any

	if filter.Region != "" {
		query += ` AND region = ?`
		args = append(args, filter.Region)
	}
	if filter.CareType != "" {
		query += ` AND care_type = ?`
		args = append(args, filter.CareType)
	}
	query += ` ORDER BY region, name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list facilities")
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Region, &f.Address, &f.CareType,
			&f.Price, &f.Year, &f.SourceURL, &f.Status, &f.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan facility")
		}
		facilities = append(facilities, f)
	}
	return facilities, eris.Wrap(rows.Err(), "sqlite: list facilities iterate")
}

func (s *SQLiteStore) CreateImportRun(ctx context.Context, source string) (*model.ImportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		id, source, string(model.ImportRunRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import run")
	}

	return &model.ImportRun{
		ID:        id,
		Source:    source,
		Status:    model.ImportRunRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteImportRun(ctx context.Context, runID string, rowsIn, recordsOut int, status model.ImportRunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET rows_in = ?, records_out = ?, status = ?, finished_at = ? WHERE id = ?`,
		rowsIn, recordsOut, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete import run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("import run not found: %s", runID)
	}
	return nil
}

func (s *SQLiteStore) ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, rows_in, records_out, status, started_at, finished_at
		 FROM import_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list import runs")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Source, &r.RowsIn, &r.RecordsOut, &r.Status, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import run")
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list import runs iterate")
}
