package main

import (
	"fmt"

	"github.com/franz/music-store-analytics/internal/report"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run data-quality audits on the snapshot",
	Long: `Audit the snapshot for data-quality problems:

- NULL counts in nullable columns (composer, album/genre references,
  invoice line fields)
- Dangling references (tracks pointing at absent albums, albums at
  absent artists, invoice lines at absent tracks)

Findings are signals, not errors: reporting queries classify the same
rows into explicit buckets rather than dropping them.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	util.InfoLog("=== Data Quality Audit ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("")

	nulls, err := report.NullAudits(db)
	if err != nil {
		return fmt.Errorf("null audit failed: %w", err)
	}

	util.InfoLog("Null counts:")
	for _, a := range nulls {
		logger.LogAudit(fmt.Sprintf("%s.%s nulls", a.Table, a.Column), a.Nulls)
		if a.Nulls > 0 {
			util.WarnLog("  %s.%s: %s of %s rows",
				a.Table, a.Column, util.FormatCount(a.Nulls), util.FormatCount(a.Total))
		} else {
			util.InfoLog("  %s.%s: none", a.Table, a.Column)
		}
	}

	util.InfoLog("")

	refs, err := report.MissingReferences(db)
	if err != nil {
		return fmt.Errorf("reference audit failed: %w", err)
	}

	util.InfoLog("Dangling references:")
	clean := true
	for _, r := range refs {
		logger.LogAudit(r.Kind, r.Count)
		if r.Count > 0 {
			clean = false
			util.WarnLog("  %s: %s rows", r.Kind, util.FormatCount(r.Count))
		} else {
			util.InfoLog("  %s: none", r.Kind)
		}
	}

	util.InfoLog("")
	if clean {
		util.SuccessLog("No dangling references found")
	}

	// Composer coverage is the audit most runs care about
	impact, err := report.ComposerRevenueImpact(db, false)
	if err != nil {
		return fmt.Errorf("composer impact failed: %w", err)
	}
	if len(impact) > 0 {
		util.InfoLog("Revenue by composer presence:")
		for _, c := range impact {
			util.InfoLog("  %s: %s tracks, %s",
				c.Bucket, util.FormatCount(c.Tracks), util.FormatMoney(c.Revenue))
		}
	}

	return nil
}
