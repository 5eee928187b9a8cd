package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PipelineRun is the run-log record for one enrichment execution
type PipelineRun struct {
	RunID             string
	StartedAt         time.Time
	CompletedAt       time.Time
	SinkMode          string
	TracksSeen        int
	AlreadyAttributed int
	Filled            int
	Unresolved        int
	Error             string
}

// InsertRun records a pipeline run
func (s *Store) InsertRun(r *PipelineRun) error {
	var completed interface{}
	if !r.CompletedAt.IsZero() {
		completed = r.CompletedAt
	}

	_, err := s.db.Exec(`
		INSERT INTO pipeline_runs
			(run_id, started_at, completed_at, sink_mode,
			 tracks_seen, already_attributed, filled, unresolved, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.StartedAt, completed, r.SinkMode,
		r.TracksSeen, r.AlreadyAttributed, r.Filled, r.Unresolved, r.Error)

	if err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}

	return nil
}

// Nullable columns are selected raw and resolved in Go. Wrapping them
// in COALESCE would strip the column decltype and the driver would
// hand back plain strings instead of times.

// GetRecentRuns returns the most recent pipeline runs, newest first
func (s *Store) GetRecentRuns(limit int) ([]*PipelineRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at, completed_at, sink_mode,
		       tracks_seen, already_attributed, filled, unresolved, error
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*PipelineRun
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun returns one pipeline run by id, or nil if it does not exist
func (s *Store) GetRun(runID string) (*PipelineRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, started_at, completed_at, sink_mode,
		       tracks_seen, already_attributed, filled, unresolved, error
		FROM pipeline_runs WHERE run_id = ?
	`, runID)

	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline run %s: %w", runID, err)
	}

	return r, nil
}

func scanRun(scan func(...interface{}) error) (*PipelineRun, error) {
	r := &PipelineRun{}
	var completed sql.NullTime
	var runErr sql.NullString

	err := scan(&r.RunID, &r.StartedAt, &completed, &r.SinkMode,
		&r.TracksSeen, &r.AlreadyAttributed, &r.Filled, &r.Unresolved, &runErr)
	if err != nil {
		return nil, err
	}

	if completed.Valid {
		r.CompletedAt = completed.Time
	} else {
		r.CompletedAt = r.StartedAt
	}
	r.Error = runErr.String

	return r, nil
}
