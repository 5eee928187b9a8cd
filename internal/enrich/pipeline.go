package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/music-store-analytics/internal/report"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/google/uuid"
)

// SinkMode selects what happens with the Fill output
type SinkMode string

const (
	// SinkView computes the enriched set without writing anything
	SinkView SinkMode = "view"
	// SinkStaging replaces the staging table with the enriched set
	SinkStaging SinkMode = "staging"
)

// Pipeline runs the enrichment stages over one catalog snapshot.
// The snapshot is read through the store passed at construction; the
// stages themselves are pure.
type Pipeline struct {
	store  *store.Store
	logger *report.EventLogger
	sink   SinkMode
}

// Config holds pipeline configuration
type Config struct {
	Store  *store.Store
	Logger *report.EventLogger
	Sink   SinkMode
}

// New creates a new Pipeline
func New(cfg *Config) *Pipeline {
	sink := cfg.Sink
	if sink == "" {
		sink = SinkView
	}
	return &Pipeline{
		store:  cfg.Store,
		logger: cfg.Logger,
		sink:   sink,
	}
}

// Result represents the outcome of one pipeline run
type Result struct {
	RunID             string
	TracksSeen        int
	AlreadyAttributed int // tracks whose composer was already present
	Filled            int // tracks filled from the album majority
	Unresolved        int // tracks left without a composer
	AlbumsResolved    int
	Enriched          []*store.EnrichedTrack
	Duration          time.Duration
}

// Run executes GroupStats, ResolveMajority, Fill and the configured
// sink over the current snapshot. In staging mode the replace is
// all-or-nothing: a failed write rolls back and the previous staging
// contents stay visible.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	util.InfoLog("Starting enrichment run %s (sink: %s)", runID, p.sink)

	tracks, err := p.store.GetAllTracks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := GroupStats(tracks)
	majority := ResolveMajority(stats)
	enriched := Fill(tracks, majority)

	result := &Result{
		RunID:          runID,
		TracksSeen:     len(tracks),
		AlbumsResolved: len(majority),
		Enriched:       enriched,
	}

	for i, t := range tracks {
		e := enriched[i]
		switch {
		case knownComposer(t) != "":
			result.AlreadyAttributed++
		case e.FinalComposer.Valid:
			result.Filled++
			p.logger.LogFill(t.TrackID, t.Name, e.FinalComposer.String)
		default:
			result.Unresolved++
		}
	}

	if p.sink == SinkStaging {
		if err := p.writeStaging(enriched); err != nil {
			p.logger.LogError(report.EventSink, runID, err)
			p.recordRun(runID, started, result, err)
			return nil, fmt.Errorf("%w: %v", util.ErrSinkWrite, err)
		}
		p.logger.LogSink(runID, string(p.sink), len(enriched))
	}

	result.Duration = time.Since(started)
	p.recordRun(runID, started, result, nil)

	util.SuccessLog("Enrichment run %s complete in %v", runID, result.Duration.Round(time.Millisecond))
	util.InfoLog("  Tracks seen: %d", result.TracksSeen)
	util.InfoLog("  Already attributed: %d", result.AlreadyAttributed)
	util.InfoLog("  Filled from album majority: %d", result.Filled)
	if result.Unresolved > 0 {
		util.InfoLog("  Unresolved: %d", result.Unresolved)
	}

	return result, nil
}

// writeStaging replaces the staging table, retrying on transient
// SQLite lock contention
func (p *Pipeline) writeStaging(enriched []*store.EnrichedTrack) error {
	return util.Retry(util.DefaultRetryConfig(), func() error {
		return p.store.ReplaceStaging(enriched)
	}, "replace staging table")
}

// recordRun writes the run-log row. Failures here are logged but do
// not fail the pipeline.
func (p *Pipeline) recordRun(runID string, started time.Time, result *Result, runErr error) {
	run := &store.PipelineRun{
		RunID:             runID,
		StartedAt:         started,
		CompletedAt:       time.Now(),
		SinkMode:          string(p.sink),
		TracksSeen:        result.TracksSeen,
		AlreadyAttributed: result.AlreadyAttributed,
		Filled:            result.Filled,
		Unresolved:        result.Unresolved,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := p.store.InsertRun(run); err != nil {
		util.WarnLog("Failed to record pipeline run %s: %v", runID, err)
	}
}
