package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
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

// Every games column is TEXT in the shared row encoding; the table
// schema mirrors Columns so the three drivers stay interchangeable.
func sqliteMigration() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS games (\n")
	for _, c := range Columns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", c)
	}
	b.WriteString("\tPRIMARY KEY (id, platform)\n);\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS games_history (\n\tsnapshot_at DATETIME NOT NULL,\n")
	for _, c := range Columns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", c)
	}
	b.WriteString("\tPRIMARY KEY (snapshot_at, id, platform)\n);\n")

	b.WriteString(`
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	row_count    INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);
CREATE INDEX IF NOT EXISTS idx_history_at ON games_history(snapshot_at);
`)
	return b.String()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration())
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadTable(ctx context.Context) (*catalog.Table, error) {
	query := fmt.Sprintf(`SELECT %s FROM games`, strings.Join(Columns, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load table")
	}
	defer rows.Close()

	var games []*model.Game
	rec := make([]string, len(Columns))
	dest := make([]any, len(Columns))
	for i := range rec {
		dest[i] = &rec[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan game")
		}
		g, err := DecodeGame(rec)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: decode game")
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load table iterate")
	}
	t := catalog.New(games)
	t.Sort()
	return t, nil
}

func (s *SQLiteStore) SaveTable(ctx context.Context, t *catalog.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
		return eris.Wrap(err, "sqlite: clear games")
	}

	insert := fmt.Sprintf(`INSERT INTO games (%s) VALUES (%s)`,
		strings.Join(Columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", "),
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, g := range t.Rows {
		rec := EncodeGame(g)
		args := make([]any, len(rec))
		for i, v := range rec {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrapf(err, "sqlite: insert game %d/%s", g.ID, g.Platform)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

func (s *SQLiteStore) Snapshot(ctx context.Context, at time.Time) error {
	cols := strings.Join(Columns, ", ")
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO games_history (snapshot_at, %s) SELECT ?, %s FROM games`, cols, cols),
		at.UTC(),
	)
	return eris.Wrap(err, "sqlite: snapshot")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, mode string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Mode, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, rows int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, row_count = ? WHERE id = ?`,
		string(model.RunStatusComplete), time.Now().UTC(), rows, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(model.RunStatusFailed), time.Now().UTC(), cause.Error(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, status, started_at, completed_at, row_count, error FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, mode, status, started_at, completed_at, row_count, error FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, filter.Mode)
	}
	query += ` ORDER BY started_at DESC`

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
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var completedAt sql.NullTime
	var status string

	err := row.Scan(&r.ID, &r.Mode, &status, &r.StartedAt, &completedAt, &r.Rows, &r.Error)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Status = model.RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}
