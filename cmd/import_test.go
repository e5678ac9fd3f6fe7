//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/config"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/store"
)

func TestImportCmd_Metadata(t *testing.T) {
	assert.Equal(t, "import", importCmd.Use)
	assert.NotEmpty(t, importCmd.Short)

	csvFlag := importCmd.Flags().Lookup("csv")
	require.NotNil(t, csvFlag)
}

func TestImportCmd_BadCSVPath(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "csv", Dir: t.TempDir()},
	}

	importCmd.SetContext(context.Background())
	defer importCmd.SetContext(context.TODO())

	oldCSV := importCSVPath
	importCSVPath = "/nonexistent/path/to/games.csv"
	defer func() { importCSVPath = oldCSV }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import: open csv")
}

func TestImportCmd_EmptyCSV(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "csv", Dir: t.TempDir()},
	}

	path := filepath.Join(t.TempDir(), "games.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n"), 0o644))

	importCmd.SetContext(context.Background())
	defer importCmd.SetContext(context.TODO())

	oldCSV := importCSVPath
	importCSVPath = path
	defer func() { importCSVPath = oldCSV }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty csv")
}

func TestImportCmd_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Export a table with one backend, import it with another.
	srcDir := t.TempDir()
	src := store.NewCSV(srcDir)
	require.NoError(t, src.Migrate(ctx))
	rows := []*model.Game{
		{
			ID:               1115,
			Name:             "Hades",
			Platform:         "Nintendo Switch",
			Category:         "main_game",
			Status:           "released",
			FirstReleaseDate: time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC),
			ReleaseDate:      time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC),
			UpdatedAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, src.SaveTable(ctx, catalog.New(rows)))

	dstDir := t.TempDir()
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "csv", Dir: dstDir},
	}

	importCmd.SetContext(ctx)
	defer importCmd.SetContext(context.TODO())

	oldCSV := importCSVPath
	importCSVPath = filepath.Join(srcDir, "games.csv")
	defer func() { importCSVPath = oldCSV }()

	require.NoError(t, importCmd.RunE(importCmd, nil))

	dst := store.NewCSV(dstDir)
	table, err := dst.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Hades", table.Rows[0].Name)
	assert.Equal(t, "Nintendo Switch", table.Rows[0].Platform)
}
