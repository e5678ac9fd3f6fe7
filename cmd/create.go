package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	createStartYear int
	createEndYear   int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Build the catalogue from scratch",
	Long:  "Pulls every rated IGDB release from the start year onward and runs a first identity lookup against every enrichment source.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if createEndYear != 0 && createEndYear < createStartYear {
			return eris.Errorf("end year %d precedes start year %d", createEndYear, createStartYear)
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := p.Create(ctx, createStartYear, createEndYear); err != nil {
			return err
		}
		zap.L().Info("create complete", zap.Int("start_year", createStartYear))
		return nil
	},
}

func init() {
	createCmd.Flags().IntVar(&createStartYear, "start-year", 1971, "earliest release year to pull")
	createCmd.Flags().IntVar(&createEndYear, "end-year", 0, "latest release year to pull (0 = current year)")
	rootCmd.AddCommand(createCmd)
}
