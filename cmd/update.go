package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	updateSources []string
	updateDryRun  bool
)

var updateStages = map[string]bool{
	"igdb":       true,
	"hltb":       true,
	"opencritic": true,
	"rawg":       true,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Incrementally sync the catalogue",
	Long:  "Pulls IGDB entries changed since the last run, resolves entities never looked up before, and refreshes metrics for recent releases.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		for _, s := range updateSources {
			if !updateStages[strings.ToLower(s)] {
				return eris.Errorf("unknown source %q (want igdb, hltb, opencritic or rawg)", s)
			}
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p.Sources = updateSources
		p.DryRun = updateDryRun

		if err := p.Update(ctx); err != nil {
			return err
		}
		zap.L().Info("update complete", zap.Bool("dry_run", updateDryRun))
		return nil
	},
}

func init() {
	updateCmd.Flags().StringSliceVar(&updateSources, "sources", nil, "restrict the run to these stages (igdb, hltb, opencritic, rawg)")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "walk the stages without saving anything")
	rootCmd.AddCommand(updateCmd)
}
