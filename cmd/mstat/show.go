package main

import (
	"fmt"
	"sort"

	"github.com/franz/music-store-analytics/internal/enrich"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Preview the enrichment result without writing anything",
	Long: `Display what the enrichment pipeline would do.

Shows per-album majority composers and the tracks whose missing
composer would be filled. Nothing is written; this is the view sink
with extra detail.

Use this to review the inference before 'mstat enrich --sink staging'.`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("filled-only", false, "show only tracks that would be filled")
	showCmd.Flags().Bool("runs", false, "show recent pipeline runs instead")
	showCmd.Flags().Int("limit", 25, "maximum albums/runs to display")
}

func runShow(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	if showRuns, _ := cmd.Flags().GetBool("runs"); showRuns {
		return showRecentRuns(db, limit)
	}

	filledOnly, _ := cmd.Flags().GetBool("filled-only")
	return showEnrichmentPreview(db, limit, filledOnly)
}

func showEnrichmentPreview(db *store.Store, limit int, filledOnly bool) error {
	tracks, err := db.GetAllTracks()
	if err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}

	albums, err := db.GetAllAlbums()
	if err != nil {
		return fmt.Errorf("failed to load albums: %w", err)
	}

	stats := enrich.GroupStats(tracks)
	majority := enrich.ResolveMajority(stats)
	enriched := enrich.Fill(tracks, majority)

	util.InfoLog("=== Enrichment Preview ===")
	util.InfoLog("Albums with a majority composer: %d", len(majority))
	fmt.Println()

	if !filledOnly {
		albumIDs := make([]int64, 0, len(majority))
		for id := range majority {
			albumIDs = append(albumIDs, id)
		}
		sort.Slice(albumIDs, func(i, j int) bool { return albumIDs[i] < albumIDs[j] })

		shown := 0
		for _, id := range albumIDs {
			if shown >= limit {
				util.InfoLog("... and %d more albums (use --limit to see more)", len(albumIDs)-shown)
				break
			}
			title := fmt.Sprintf("album %d", id)
			if a, ok := albums[id]; ok {
				title = a.Title
			}
			fmt.Printf("  %s → %s\n", title, majority[id])
			shown++
		}
		fmt.Println()
	}

	filled := 0
	unresolved := 0
	for i, t := range tracks {
		e := enriched[i]
		if t.Composer.Valid && t.Composer.String != "" {
			continue
		}
		if e.FinalComposer.Valid {
			filled++
			if filled <= limit {
				fmt.Printf("  ✓ [FILL] %s → %s\n", t.Name, e.FinalComposer.String)
			}
		} else {
			unresolved++
		}
	}

	fmt.Println()
	util.InfoLog("=== Statistics ===")
	util.InfoLog("Tracks: %d", len(tracks))
	util.InfoLog("  Would be filled: %d", filled)
	util.InfoLog("  Unresolved (no album or no known composer): %d", unresolved)
	fmt.Println()
	util.InfoLog("To persist: mstat enrich --sink staging")

	return nil
}

func showRecentRuns(db *store.Store, limit int) error {
	runs, err := db.GetRecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}

	if len(runs) == 0 {
		util.WarnLog("No pipeline runs recorded yet. Run 'mstat enrich' first.")
		return nil
	}

	util.InfoLog("=== Recent Pipeline Runs ===")
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "failed: " + r.Error
		}
		fmt.Printf("  %s  %.8s  sink=%s  seen=%d filled=%d unresolved=%d  [%s]\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.RunID,
			r.SinkMode, r.TracksSeen, r.Filled, r.Unresolved, status)
	}

	return nil
}
