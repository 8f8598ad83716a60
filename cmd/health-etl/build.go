// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/health-etl/internal/catalog"
	"github.com/pdiddy/health-etl/internal/etl"
	"github.com/pdiddy/health-etl/internal/logging"
	"github.com/pdiddy/health-etl/internal/secrets"
	"github.com/pdiddy/health-etl/internal/store"
	"github.com/pdiddy/health-etl/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the merge-and-validate pipeline",
	Long: `Build reads the raw activity and obesity extracts, validates both tables
(non-null keys, unique composite keys, measures in [0,100]), inner-joins them
on COUNTRY/AGE/SEX/YEAR, derives GAP_PP, revalidates the curated table, and
writes the snapshots.

Exactly one execution mode applies: --dry-run validates and writes nothing,
--local-dir writes under a local directory, and the default writes the
processed and curated layers back to the blob container. Remote access needs
a SAS token from the ADLS_SAS environment variable or .secrets/adls-sas-token.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Configuration problems surface here, before any store is touched.
	if err := etl.ValidateConfig(cfg); err != nil {
		return err
	}

	source, sink, err := buildStores(cfg)
	if err != nil {
		return err
	}

	started := time.Now()
	pipeline := etl.New(cfg, source, sink, log)
	report, runErr := pipeline.Run(context.Background(), os.Stdout)

	recordRun(cfg, report, started, runErr, log)

	if runErr != nil {
		return runErr
	}

	if cfg.Output.ReportPath != "" {
		f, err := os.Create(cfg.Output.ReportPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		if err := report.WriteYAML(f); err != nil {
			return err
		}
		fmt.Printf("wrote run report to %s\n", cfg.Output.ReportPath)
	}

	fmt.Printf("run %s complete: activity=%d obesity=%d curated=%d mode=%s\n",
		report.RunID, report.ActivityRows, report.ObesityRows, report.CuratedRows, report.Mode)
	return nil
}

// buildConfig assembles the pipeline configuration from flags, with viper
// filling anything the flags leave empty. The SAS token comes from the
// environment or the secrets directory, never from a flag.
func buildConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	account, _ := cmd.Flags().GetString("account")
	if account == "" {
		account = viper.GetString("storage.account")
	}
	container, _ := cmd.Flags().GetString("container")
	if container == "" {
		container = viper.GetString("storage.container")
	}

	ages, _ := cmd.Flags().GetIntSlice("ages")
	activityPrefix, _ := cmd.Flags().GetString("activity-prefix")
	obesityPrefix, _ := cmd.Flags().GetString("obesity-prefix")
	rawDir, _ := cmd.Flags().GetString("raw-dir")

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	localDir, _ := cmd.Flags().GetString("local-dir")
	parquet, _ := cmd.Flags().GetBool("parquet")
	reportPath, _ := cmd.Flags().GetString("report")

	stateDir, _ := cmd.Flags().GetString("state-dir")
	if stateDir == "" {
		stateDir = viper.GetString("catalog.state_dir")
	}

	mode := types.ModeRemote
	switch {
	case dryRun:
		mode = types.ModeDryRun
	case localDir != "":
		mode = types.ModeLocal
	}

	sas, err := secrets.SASToken(secretsDir)
	if err != nil {
		return types.PipelineConfig{}, err
	}

	return types.PipelineConfig{
		Storage: types.StorageConfig{
			Account:   account,
			Container: container,
			SASToken:  sas,
		},
		Extract: types.ExtractConfig{
			Ages:           ages,
			ActivityPrefix: activityPrefix,
			ObesityPrefix:  obesityPrefix,
			RawDir:         rawDir,
		},
		Output: types.OutputConfig{
			Mode:       mode,
			LocalDir:   localDir,
			Parquet:    parquet,
			ReportPath: reportPath,
		},
		Catalog: types.CatalogConfig{StateDir: stateDir},
	}, nil
}

// buildStores wires the source and sink for the selected mode. A single
// Azure client serves both ends when the run is fully remote.
func buildStores(cfg types.PipelineConfig) (store.Reader, store.Writer, error) {
	var azure *store.Azure
	if cfg.Extract.RawDir == "" || cfg.Output.Mode == types.ModeRemote {
		var err error
		azure, err = store.NewAzure(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
	}

	var source store.Reader = azure
	if cfg.Extract.RawDir != "" {
		source = store.NewDir(cfg.Extract.RawDir)
	}

	var sink store.Writer
	switch cfg.Output.Mode {
	case types.ModeDryRun:
		sink = &store.Discard{}
	case types.ModeLocal:
		sink = store.NewDir(cfg.Output.LocalDir)
	default:
		sink = azure
	}
	return source, sink, nil
}

// recordRun appends the run to the local ledger. Ledger failures are
// warnings; they never fail the pipeline.
func recordRun(cfg types.PipelineConfig, report *etl.Report, started time.Time, runErr error, log *zap.Logger) {
	ledger, err := catalog.Open(cfg.Catalog)
	if err != nil {
		log.Warn("run ledger unavailable", zap.Error(err))
		return
	}
	defer ledger.Close()

	run := catalog.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Mode:       cfg.Output.Mode,
		Status:     "succeeded",
	}
	if report != nil {
		run.ID = report.RunID
		run.ActivityRows = report.ActivityRows
		run.ObesityRows = report.ObesityRows
		run.CuratedRows = report.CuratedRows
		run.UnmatchedActivity = report.Unmatched.UnmatchedActivity
		run.Artifacts = report.Artifacts
	}
	if runErr != nil {
		run.Status = "failed: " + runErr.Error()
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("failed-%d", started.UnixNano())
	}

	if err := ledger.Record(context.Background(), run); err != nil {
		log.Warn("could not record run", zap.Error(err))
	}
}

func init() {
	buildCmd.Flags().String("account", "", "ADLS Gen2 storage account name")
	buildCmd.Flags().String("container", "", "blob container holding raw/, processed/, curated/")
	buildCmd.Flags().IntSlice("ages", types.DefaultAges, "survey age groups to process")
	buildCmd.Flags().String("activity-prefix", types.DefaultActivityPrefix, "raw file name prefix for activity extracts")
	buildCmd.Flags().String("obesity-prefix", types.DefaultObesityPrefix, "raw file name prefix for obesity extracts")
	buildCmd.Flags().String("raw-dir", "", "read raw extracts from a local directory instead of the container")

	buildCmd.Flags().Bool("dry-run", false, "run validations only; write nothing")
	buildCmd.Flags().String("local-dir", "", "write snapshots under this directory instead of the container")
	buildCmd.MarkFlagsMutuallyExclusive("dry-run", "local-dir")

	buildCmd.Flags().Bool("parquet", false, "also write Parquet snapshots")
	buildCmd.Flags().String("report", "", "write the YAML run report to this file")
	buildCmd.Flags().String("state-dir", "", "directory for the run ledger (default .health-etl)")
	buildCmd.Flags().Bool("debug", false, "verbose structured logs")

	rootCmd.AddCommand(buildCmd)
}
