package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/benxu001/NYC-Rent-Map/internal/pipeline"
	"github.com/benxu001/NYC-Rent-Map/internal/store"
	"github.com/benxu001/NYC-Rent-Map/internal/zori"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the merge pipeline and write the processed outputs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts := pipeline.Options{
			GeoJSONPath:       cfg.Data.GeoJSON,
			ZORIPath:          cfg.Data.ZORI,
			OutGeoJSONPath:    cfg.Data.OutGeoJSON,
			OutTimeseriesPath: cfg.Data.OutTimeseries,
			Filter: zori.Filter{
				State:       cfg.Filter.State,
				ZipPrefixes: cfg.Filter.ZipPrefixes,
				MinYear:     cfg.Filter.MinYear,
			},
			KeyFields: cfg.KeyFields,
		}

		if v, _ := cmd.Flags().GetString("geojson"); v != "" {
			opts.GeoJSONPath = v
		}
		if v, _ := cmd.Flags().GetString("zori"); v != "" {
			opts.ZORIPath = v
		}
		if v, _ := cmd.Flags().GetString("out-geojson"); v != "" {
			opts.OutGeoJSONPath = v
		}
		if v, _ := cmd.Flags().GetString("out-timeseries"); v != "" {
			opts.OutTimeseriesPath = v
		}
		if v, _ := cmd.Flags().GetString("state"); v != "" {
			opts.Filter.State = v
		}
		if v, _ := cmd.Flags().GetStringSlice("zip-prefixes"); len(v) > 0 {
			opts.Filter.ZipPrefixes = v
		}
		if v, _ := cmd.Flags().GetInt("min-year"); v != 0 {
			opts.Filter.MinYear = v
		}

		result, runErr := pipeline.Run(opts)

		if err := recordRun(ctx, result, runErr); err != nil {
			zap.L().Warn("failed to record run history", zap.Error(err))
		}

		if runErr != nil {
			return eris.Wrap(runErr, "process")
		}

		printSummary(result)
		return nil
	},
}

func init() {
	processCmd.Flags().String("geojson", "", "boundary GeoJSON input (default from config)")
	processCmd.Flags().String("zori", "", "ZORI table input, .csv or .xlsx (default from config)")
	processCmd.Flags().String("out-geojson", "", "merged GeoJSON output (default from config)")
	processCmd.Flags().String("out-timeseries", "", "raw time-series output (default from config)")
	processCmd.Flags().String("state", "", "state discriminator (default from config)")
	processCmd.Flags().StringSlice("zip-prefixes", nil, "ZIP prefix allow-list (default from config)")
	processCmd.Flags().Int("min-year", 0, "minimum year for date columns (default from config)")
	rootCmd.AddCommand(processCmd)
}

// recordRun persists the run outcome when a history store is configured.
func recordRun(ctx context.Context, result *pipeline.Result, runErr error) error {
	s, err := openStore(ctx)
	if err != nil || s == nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Migrate(ctx); err != nil {
		return err
	}

	var run *store.Run
	if runErr != nil {
		run = store.NewFailedRun(runErr)
	} else {
		run = store.NewRun(result)
	}
	return s.InsertRun(ctx, run)
}

// openStore returns the configured history store, or nil when history
// is disabled.
func openStore(ctx context.Context) (store.Store, error) {
	dsn := cfg.Store.Path
	if cfg.Store.Driver == "postgres" {
		dsn = cfg.Store.DatabaseURL
	}
	if dsn == "" {
		return nil, nil
	}
	return store.Open(ctx, cfg.Store.Driver, dsn)
}

func printSummary(r *pipeline.Result) {
	p := message.NewPrinter(language.English)

	p.Printf("Processed %d boundary polygons against %d rent series\n", r.Features, r.Keys)
	p.Printf("  matched: %d   unmatched: %d\n", r.Matched, r.Unmatched)
	if r.Dates > 0 {
		p.Printf("  dates: %d (%s to %s)\n", r.Dates, r.FirstDate, r.LastDate)
	}
	p.Printf("  wrote %.1f KB geojson, %.1f KB timeseries in %s\n",
		float64(r.GeoJSONBytes)/1024, float64(r.TimeseriesBytes)/1024, r.Duration.Round(time.Millisecond))
	fmt.Println("Processing complete")
}
