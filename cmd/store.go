package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/store"
)

// initStore opens the configured persistence backend and runs
// migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "csv":
		st = store.NewCSV(cfg.Store.Dir)
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "catalog.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		var pool *store.PoolConfig
		if cfg.Store.Pool != nil {
			pool = &store.PoolConfig{
				MaxConns: cfg.Store.Pool.MaxConns,
				MinConns: cfg.Store.Pool.MinConns,
			}
		}
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, pool)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
