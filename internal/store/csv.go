package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
)

const (
	csvTableFile   = "games.csv"
	csvRunsFile    = "runs.json"
	snapshotLayout = "06-01-02-15" // games_YY-MM-DD-HH.csv
)

// CSVStore keeps the catalogue as flat files under one directory:
// games.csv for the live table, timestamped copies for snapshots and
// runs.json for the run log. Writes go through a temp file and rename
// so a crash never leaves a half-written table.
type CSVStore struct {
	dir string
}

// NewCSV creates a store rooted at dir.
func NewCSV(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

func (s *CSVStore) Migrate(ctx context.Context) error {
	return eris.Wrap(os.MkdirAll(s.dir, 0o755), "csv: mkdir")
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) LoadTable(ctx context.Context) (*catalog.Table, error) {
	f, err := os.Open(filepath.Join(s.dir, csvTableFile))
	if err != nil {
		return nil, eris.Wrap(err, "csv: open table")
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read table")
	}
	if len(records) == 0 {
		return catalog.New(nil), nil
	}

	games := make([]*model.Game, 0, len(records)-1)
	for i, rec := range records[1:] {
		g, err := DecodeGame(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: row %d", i+2)
		}
		games = append(games, g)
	}
	return catalog.New(games), nil
}

func (s *CSVStore) SaveTable(ctx context.Context, t *catalog.Table) error {
	return s.writeTable(filepath.Join(s.dir, csvTableFile), t)
}

func (s *CSVStore) Snapshot(ctx context.Context, at time.Time) error {
	t, err := s.LoadTable(ctx)
	if err != nil {
		return eris.Wrap(err, "csv: snapshot")
	}
	name := "games_" + at.Format(snapshotLayout) + ".csv"
	return s.writeTable(filepath.Join(s.dir, name), t)
}

func (s *CSVStore) writeTable(path string, t *catalog.Table) error {
	tmp, err := os.CreateTemp(s.dir, ".games-*.csv")
	if err != nil {
		return eris.Wrap(err, "csv: create temp")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csv: write header")
	}
	for _, g := range t.Rows {
		if err := w.Write(EncodeGame(g)); err != nil {
			tmp.Close()
			return eris.Wrap(err, "csv: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csv: flush")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "csv: close temp")
	}
	return eris.Wrap(os.Rename(tmp.Name(), path), "csv: rename")
}

// run log

func (s *CSVStore) loadRuns() ([]model.Run, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, csvRunsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read runs")
	}
	var runs []model.Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, eris.Wrap(err, "csv: unmarshal runs")
	}
	return runs, nil
}

func (s *CSVStore) saveRuns(runs []model.Run) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return eris.Wrap(err, "csv: marshal runs")
	}
	tmp, err := os.CreateTemp(s.dir, ".runs-*.json")
	if err != nil {
		return eris.Wrap(err, "csv: create temp")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return eris.Wrap(err, "csv: write runs")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "csv: close temp")
	}
	return eris.Wrap(os.Rename(tmp.Name(), filepath.Join(s.dir, csvRunsFile)), "csv: rename runs")
}

func (s *CSVStore) CreateRun(ctx context.Context, mode string) (*model.Run, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, err
	}
	run := model.Run{
		ID:        uuid.New().String(),
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	runs = append(runs, run)
	if err := s.saveRuns(runs); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *CSVStore) updateRun(runID string, fn func(*model.Run)) error {
	runs, err := s.loadRuns()
	if err != nil {
		return err
	}
	for i := range runs {
		if runs[i].ID == runID {
			fn(&runs[i])
			return s.saveRuns(runs)
		}
	}
	return eris.Errorf("run not found: %s", runID)
}

func (s *CSVStore) CompleteRun(ctx context.Context, runID string, rows int64) error {
	now := time.Now().UTC()
	return s.updateRun(runID, func(r *model.Run) {
		r.Status = model.RunStatusComplete
		r.CompletedAt = &now
		r.Rows = rows
	})
}

func (s *CSVStore) FailRun(ctx context.Context, runID string, cause error) error {
	now := time.Now().UTC()
	return s.updateRun(runID, func(r *model.Run) {
		r.Status = model.RunStatusFailed
		r.CompletedAt = &now
		r.Error = cause.Error()
	})
}

func (s *CSVStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].ID == runID {
			return &runs[i], nil
		}
	}
	return nil, eris.Errorf("run not found: %s", runID)
}

func (s *CSVStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, err
	}

	// Newest first.
	var out []model.Run
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Mode != "" && r.Mode != filter.Mode {
			continue
		}
		out = append(out, r)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
