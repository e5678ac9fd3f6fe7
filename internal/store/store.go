// Package store persists the catalogue table and the run log. Three
// drivers share one row codec: csv for flat-file workflows, sqlite
// for a local single-file database, postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Mode   string          `json:"mode,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the sync pipeline.
type Store interface {
	// Table
	LoadTable(ctx context.Context) (*catalog.Table, error)
	SaveTable(ctx context.Context, t *catalog.Table) error
	Snapshot(ctx context.Context, at time.Time) error

	// Run log
	CreateRun(ctx context.Context, mode string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, rows int64) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
