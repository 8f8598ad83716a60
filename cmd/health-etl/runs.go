// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/health-etl/internal/catalog"
	"github.com/pdiddy/health-etl/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	Long: `Runs lists recent pipeline executions from the local ledger: when they
ran, in which mode, the table row counts, and whether they succeeded.`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	stateDir, _ := cmd.Flags().GetString("state-dir")
	if stateDir == "" {
		stateDir = viper.GetString("catalog.state_dir")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ledger, err := catalog.Open(types.CatalogConfig{StateDir: stateDir})
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.List(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-8s  %8s  %8s  %8s  %s\n",
		"Run", "Started", "Mode", "Activity", "Obesity", "Curated", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range runs {
		status := r.Status
		if len(status) > 40 {
			status = status[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-8s  %8d  %8d  %8d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Mode,
			r.ActivityRows, r.ObesityRows, r.CuratedRows, status)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func init() {
	runsCmd.Flags().String("state-dir", "", "directory for the run ledger (default .health-etl)")
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(runsCmd)
}
