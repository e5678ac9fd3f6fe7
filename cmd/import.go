package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/fetcher"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/store"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a catalogue CSV into the configured store",
	Long:  "Loads an exported games CSV and writes it to the configured backend, e.g. to move a flat-file catalogue into sqlite or postgres.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "import: open csv")
		}
		defer f.Close()

		rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{HasHeader: true})

		var games []*model.Game
		row := 1
		for rec := range rowCh {
			row++
			g, err := store.DecodeGame(rec)
			if err != nil {
				return eris.Wrapf(err, "import: row %d", row)
			}
			games = append(games, g)
		}
		if err := <-errCh; err != nil {
			return eris.Wrap(err, "import: read csv")
		}
		if len(games) == 0 {
			return eris.New("import: empty csv")
		}
		t := catalog.New(games)
		t.DedupeKeepLast() // file order: a later duplicate is the newer row
		t.Sort()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveTable(ctx, t); err != nil {
			return eris.Wrap(err, "import: save")
		}

		zap.L().Info("import complete",
			zap.Int("rows", t.Len()),
			zap.String("csv", importCSVPath),
			zap.String("driver", cfg.Store.Driver),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
