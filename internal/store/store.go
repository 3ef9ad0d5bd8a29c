// Package store persists the run history: one record per processed data
// unit, so partitioned invocations can be audited and resumed by hand.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/antibody-tools/oas-cli/internal/config"
)

// FileRun is one processed data unit's record in the run history.
type FileRun struct {
	ID        string
	File      string
	Species   string
	Chain     string
	Isotype   string
	TotalRows int
	Filtered  int
	Unique    int
	Duration  time.Duration
	CreatedAt time.Time
}

// Store defines the run-history persistence interface.
type Store interface {
	RecordRun(ctx context.Context, run *FileRun) error
	ListRuns(ctx context.Context, limit int) ([]FileRun, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
