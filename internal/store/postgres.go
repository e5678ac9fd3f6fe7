package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/db"
	"github.com/gamedex/catalog-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO runs (id, mode, status, started_at) VALUES ($1, $2, $3, $4)`,
	"complete_run": `UPDATE runs SET status = $1, completed_at = $2, row_count = $3 WHERE id = $4`,
	"fail_run":     `UPDATE runs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
	"get_run":      `SELECT id, mode, status, started_at, completed_at, row_count, error FROM runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// The games and games_history schemas mirror the shared Columns list;
// runs keeps native timestamps. row_count avoids the reserved word.
func postgresMigration() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS games (\n")
	for _, c := range Columns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", c)
	}
	b.WriteString("\tPRIMARY KEY (id, platform)\n);\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS games_history (\n\tsnapshot_at TIMESTAMPTZ NOT NULL,\n")
	for _, c := range Columns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", c)
	}
	b.WriteString("\tPRIMARY KEY (snapshot_at, id, platform)\n);\n")

	b.WriteString(`
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	row_count    BIGINT NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);
CREATE INDEX IF NOT EXISTS idx_history_at ON games_history(snapshot_at);
`)
	return b.String()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration())
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) LoadTable(ctx context.Context) (*catalog.Table, error) {
	query := fmt.Sprintf(`SELECT %s FROM games`, strings.Join(Columns, ", "))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load table")
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
			return nil, eris.Wrap(err, "postgres: scan game")
		}
		g, err := DecodeGame(rec)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: decode game")
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: load table iterate")
	}
	t := catalog.New(games)
	t.Sort()
	return t, nil
}

func (s *PostgresStore) SaveTable(ctx context.Context, t *catalog.Table) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE games`); err != nil {
		return eris.Wrap(err, "postgres: clear games")
	}

	rows := make([][]any, 0, t.Len())
	for _, g := range t.Rows {
		rec := EncodeGame(g)
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		rows = append(rows, row)
	}
	_, err := db.CopyFrom(ctx, s.pool, "games", Columns, rows)
	return eris.Wrap(err, "postgres: save table")
}

func (s *PostgresStore) Snapshot(ctx context.Context, at time.Time) error {
	cols := strings.Join(Columns, ", ")
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO games_history (snapshot_at, %s) SELECT $1, %s FROM games`, cols, cols),
		at.UTC(),
	)
	return eris.Wrap(err, "postgres: snapshot")
}

func (s *PostgresStore) CreateRun(ctx context.Context, mode string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, mode, status, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Mode, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, rows int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, completed_at = $2, row_count = $3 WHERE id = $4`,
		string(model.RunStatusComplete), time.Now().UTC(), rows, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
		string(model.RunStatusFailed), time.Now().UTC(), cause.Error(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var status string
	var completedAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, mode, status, started_at, completed_at, row_count, error FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Mode, &status, &r.StartedAt, &completedAt, &r.Rows, &r.Error)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	r.Status = model.RunStatus(status)
	r.CompletedAt = completedAt
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, mode, status, started_at, completed_at, row_count, error FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Mode != "" {
		query += fmt.Sprintf(` AND mode = $%d`, argIdx)
		args = append(args, filter.Mode)
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

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
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var completedAt *time.Time

		if err := rows.Scan(&r.ID, &r.Mode, &status, &r.StartedAt, &completedAt, &r.Rows, &r.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		r.CompletedAt = completedAt
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
