package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_SaveLoadRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	want := catalog.New([]*model.Game{
		{ID: 7, Name: "Celeste", Platform: "Switch"},
		fullGame(),
	})
	require.NoError(t, s.SaveTable(ctx, want))

	got, err := s.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	// LoadTable sorts by name.
	assert.Equal(t, "Celeste", got.Rows[0].Name)
	assert.Equal(t, fullGame(), got.Rows[1])
}

func TestSQLite_SaveReplacesTable(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTable(ctx, catalog.New([]*model.Game{fullGame()})))
	require.NoError(t, s.SaveTable(ctx, catalog.New([]*model.Game{{ID: 9, Name: "Bastion", Platform: "PC"}})))

	got, err := s.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Bastion", got.Rows[0].Name)
}

func TestSQLite_LoadEmpty(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSQLite_SnapshotPreservesHistory(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTable(ctx, catalog.New([]*model.Game{fullGame()})))
	require.NoError(t, s.Snapshot(ctx, time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)))

	// A later save must not touch what the snapshot captured.
	require.NoError(t, s.SaveTable(ctx, catalog.New(nil)))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM games_history`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "update")
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, run.ID, 42))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, int64(42), got.Rows)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_FailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "create")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, eris.New("rate limited")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "rate limited", got.Error)
}

func TestSQLite_CompleteUnknownRun(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "nope", 0)
	assert.Error(t, err)
}

func TestSQLite_ListRunsFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "create")
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, "update")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, b.ID, 5))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, a.ID, runs[0].ID)

	runs, err = s.ListRuns(ctx, RunFilter{Mode: "update"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, b.ID, runs[0].ID)

	runs, err = s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
