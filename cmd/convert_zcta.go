package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/benxu001/NYC-Rent-Map/internal/boundary"
)

var convertZCTACmd = &cobra.Command{
	Use:   "convert-zcta <shapefile>",
	Short: "Convert a Census ZCTA shapefile into the GeoJSON boundary input",
	Long: `Reads a TIGER/Line ZCTA shapefile and writes a GeoJSON FeatureCollection
whose features carry a ZCTA5CE10 property, usable directly as the
boundary input of the process command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Data.GeoJSON
		}

		fc, err := boundary.ConvertZCTA(args[0])
		if err != nil {
			return eris.Wrap(err, "convert-zcta")
		}

		data, err := json.Marshal(fc)
		if err != nil {
			return eris.Wrap(err, "convert-zcta: marshal")
		}

		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "convert-zcta: create %s", dir)
			}
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "convert-zcta: write %s", out)
		}

		fmt.Printf("Wrote %d features to %s (%.1f KB)\n", len(fc.Features), out, float64(len(data))/1024)
		return nil
	},
}

func init() {
	convertZCTACmd.Flags().String("out", "", "output GeoJSON path (default: configured boundary input)")
	rootCmd.AddCommand(convertZCTACmd)
}
