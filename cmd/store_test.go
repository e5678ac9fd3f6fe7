//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/config"
)

func TestInitStore_CSV(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "csv", Dir: t.TempDir()},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "catalog.db"),
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "parquet"},
	}

	st, err := initStore(context.Background())
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "parquet")
}
