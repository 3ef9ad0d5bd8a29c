package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
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
CREATE TABLE IF NOT EXISTS file_runs (
	id         TEXT PRIMARY KEY,
	file       TEXT NOT NULL,
	species    TEXT NOT NULL DEFAULT '',
	chain      TEXT NOT NULL DEFAULT '',
	isotype    TEXT NOT NULL DEFAULT '',
	total_rows INTEGER NOT NULL DEFAULT 0,
	filtered   INTEGER NOT NULL DEFAULT 0,
	unique_seq INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_file_runs_file ON file_runs(file);
CREATE INDEX IF NOT EXISTS idx_file_runs_created_at ON file_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run *FileRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_runs (id, file, species, chain, isotype, total_rows, filtered, unique_seq, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, run.Species, run.Chain, run.Isotype,
		run.TotalRows, run.Filtered, run.Unique,
		run.Duration.Milliseconds(), run.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.File)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]FileRun, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, species, chain, isotype, total_rows, filtered, unique_seq, duration_ms, created_at
		 FROM file_runs ORDER BY created_at DESC, file LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []FileRun
	for rows.Next() {
		var r FileRun
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.File, &r.Species, &r.Chain, &r.Isotype,
			&r.TotalRows, &r.Filtered, &r.Unique, &durationMS, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
