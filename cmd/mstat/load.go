package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/franz/music-store-analytics/internal/load"
	"github.com/franz/music-store-analytics/internal/report"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import catalog CSV exports into the snapshot database",
	Long: `Import catalog CSV exports into the SQLite snapshot.

The import directory may contain any of: artists.csv, albums.csv,
genres.csv, tracks.csv, employees.csv, customers.csv, invoices.csv,
invoice_lines.csv. Files not present are skipped. Each file needs a
header row; empty fields become NULL.`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringP("from", "f", "", "directory containing the CSV exports")
	loadCmd.Flags().Bool("no-progress", false, "disable the progress bar")
	viper.BindPFlag("from", loadCmd.Flags().Lookup("from"))
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	source := viper.GetString("from")
	if source == "" {
		return fmt.Errorf("import directory is required (use --from/-f or set in config)")
	}

	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return fmt.Errorf("import directory does not exist: %s", source)
	}

	util.InfoLog("Opening database: %s", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	noProgress, _ := cmd.Flags().GetBool("no-progress")

	util.InfoLog("=== Importing catalog from %s ===", source)

	loader := load.New(&load.Config{
		Store:        db,
		Logger:       logger,
		ShowProgress: !noProgress && !viper.GetBool("quiet"),
	})

	startTime := time.Now()
	result, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	util.SuccessLog("Import complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Tables loaded: %d", result.TablesLoaded)
	util.InfoLog("  Rows loaded: %s", util.FormatCount(result.RowsLoaded))
	for _, skipped := range result.Skipped {
		util.DebugLog("  Skipped (not present): %s", skipped)
	}

	util.InfoLog("")
	util.InfoLog("Next step: mstat enrich --sink staging")

	return nil
}

// newEventLogger creates the JSONL event logger under artifacts/,
// falling back to a no-op logger on failure
func newEventLogger() *report.EventLogger {
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

	return logger
}
