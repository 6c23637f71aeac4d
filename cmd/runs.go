package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		if s == nil {
			fmt.Println("Run history is disabled; set store.path in config.yaml to enable it")
			return nil
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(ctx); err != nil {
			return eris.Wrap(err, "runs: migrate")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet")
			return nil
		}

		fmt.Printf("%-36s %-10s %8s %8s %10s %10s %s\n",
			"ID", "Status", "Matched", "Unmatch", "Dates", "Duration", "Created At")
		fmt.Println(strings.Repeat("-", 96))

		for _, r := range runs {
			fmt.Printf("%-36s %-10s %8d %8d %10d %8dms %s\n",
				r.ID, r.Status, r.Matched, r.Unmatched, r.Dates,
				r.DurationMs, r.CreatedAt.Format("2006-01-02 15:04"))
		}

		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
