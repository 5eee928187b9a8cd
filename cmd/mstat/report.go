package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/music-store-analytics/internal/report"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the analytics report from the snapshot",
	Long: `Generate the analytics report in Markdown format.

The report includes:
- Customer segmentation and country rollup
- Support rep load
- Genre and artist revenue share (with unattributed buckets)
- Composer attribution impact, raw and post-enrichment
- Lost-revenue estimate for incomplete invoice lines
- Time-of-day and seasonality patterns

The report is saved to artifacts/reports/<timestamp>/analytics.md.
With --xlsx an Excel workbook is written next to it.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "output directory (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().Bool("xlsx", false, "also write an Excel workbook")
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	util.InfoLog("=== Generating Analytics Report ===")
	util.InfoLog("Database: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	util.InfoLog("Running report queries...")
	analytics, err := report.Generate(db, logger)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	analytics.DatabasePath = dbPath

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}

	outputPath := filepath.Join(outputDir, "analytics.md")
	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(analytics, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if xlsx, _ := cmd.Flags().GetBool("xlsx"); xlsx {
		xlsxPath := filepath.Join(outputDir, "analytics.xlsx")
		util.InfoLog("Writing workbook to: %s", xlsxPath)
		if err := report.WriteXLSXReport(analytics, xlsxPath); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("")
	util.InfoLog("Summary:")
	util.InfoLog("  Customer segments: %d", len(analytics.Segments))
	util.InfoLog("  Genres: %d", len(analytics.Genres))
	util.InfoLog("  Artists: %d", len(analytics.Artists))
	if analytics.Lost != nil && analytics.Lost.Lines > 0 {
		util.WarnLog("  Incomplete invoice lines: %d (est. %s)",
			analytics.Lost.Lines, util.FormatMoney(analytics.Lost.Estimate))
	}

	return nil
}
