package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benxu001/NYC-Rent-Map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rentmap",
	Short: "NYC rent map data pipeline",
	Long:  "Merges ZIP-code boundary polygons with Zillow ZORI rent series, producing the processed GeoJSON and time-series documents the map front end consumes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
