// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the health-etl CLI. It builds the
// processed and curated child activity/obesity datasets consumed by the
// Health BI dashboard.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds credential files (see internal/secrets).
const secretsDir = ".secrets/"

// rootCmd is the base command for the health-etl CLI.
var rootCmd = &cobra.Command{
	Use:   "health-etl",
	Short: "Build curated child activity/obesity datasets for Health BI",
	Long: `health-etl merges two WHO survey extracts (child physical activity and
child overweight/obesity) into one curated table keyed by COUNTRY, AGE, SEX,
and YEAR, validating key hygiene and measure ranges along the way.

The build subcommand runs the pipeline end to end: read raw extracts, validate
both sources, inner-join them, derive the activity/obesity gap, revalidate,
and write CSV (and optionally Parquet) snapshots. Runs are recorded in a local
ledger; see the runs subcommand.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./health-etl.yaml or ~/.config/health-etl/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("health-etl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "health-etl"))
		}
	}

	viper.SetEnvPrefix("HEALTH_ETL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
