package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/franz/music-store-analytics/internal/enrich"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill missing composer tags from the album majority vote",
	Long: `Run the composer enrichment pipeline over the catalog snapshot.

For each album, the composer occurring most often among its tracks wins
the majority vote (ties break to the lexicographically smallest name).
Tracks without a composer inherit their album's majority composer;
known composer values are never overwritten. Tracks without an album
stay unresolved.

Sink modes:
  view     compute and summarize only, write nothing (default)
  staging  atomically replace the staging_track_cleaned table

With --watch the pipeline re-runs whenever the snapshot file changes.`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().String("sink", "view", "sink mode: view or staging")
	enrichCmd.Flags().Bool("watch", false, "re-run when the snapshot database changes")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	sinkFlag, _ := cmd.Flags().GetString("sink")
	var sink enrich.SinkMode
	switch sinkFlag {
	case "view":
		sink = enrich.SinkView
	case "staging":
		sink = enrich.SinkStaging
	default:
		return fmt.Errorf("%w: unknown sink mode %q (want view or staging)", util.ErrInvalidConfig, sinkFlag)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	pipeline := enrich.New(&enrich.Config{
		Store:  db,
		Logger: logger,
		Sink:   sink,
	})

	if _, err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	return watchAndRerun(ctx, pipeline, dbPath)
}

// watchAndRerun re-runs the pipeline whenever the snapshot file is
// rewritten. Events are debounced because SQLite commits show up as
// bursts of writes.
func watchAndRerun(ctx context.Context, pipeline *enrich.Pipeline, dbPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors and SQLite replace files rather
	// than writing in place, which drops per-file watches.
	dir := filepath.Dir(dbPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	util.InfoLog("Watching %s for changes (Ctrl-C to stop)", dbPath)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	const debounce = 2 * time.Second
	var timer *time.Timer
	var suppressUntil time.Time
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(dbPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// A staging run writes the watched database itself; skip
			// the events our own sink produced
			if time.Now().Before(suppressUntil) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			util.InfoLog("Snapshot changed, re-running enrichment")
			if _, err := pipeline.Run(ctx); err != nil {
				util.ErrorLog("Enrichment failed: %v", err)
			}
			suppressUntil = time.Now().Add(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("Watcher error: %v", err)

		case <-interrupt:
			util.InfoLog("Stopping watch")
			return nil
		}
	}
}
