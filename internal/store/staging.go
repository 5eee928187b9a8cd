package store

import (
	"database/sql"
	"fmt"
)

// EnrichedTrack is one row of the staging_track_cleaned table: a track
// with its composer filled from the album majority vote where the
// original was missing. FinalComposer stays null when the track could
// not be resolved (no album, or no known composer on the album).
type EnrichedTrack struct {
	TrackID       int64
	Name          string
	FinalComposer sql.NullString
	AlbumID       sql.NullInt64
	GenreID       sql.NullInt64
	Milliseconds  int64
	UnitPrice     float64
}

// ReplaceStaging replaces the full contents of staging_track_cleaned
// with the given rows inside one transaction. A failure anywhere rolls
// back and leaves the previous staging snapshot untouched, so readers
// never see a mixed old/new state.
func (s *Store) ReplaceStaging(tracks []*EnrichedTrack) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM staging_track_cleaned`); err != nil {
			return fmt.Errorf("failed to clear staging table: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO staging_track_cleaned
				(track_id, name, final_composer, album_id, genre_id, milliseconds, unit_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, t := range tracks {
			_, err := stmt.Exec(t.TrackID, t.Name, t.FinalComposer,
				t.AlbumID, t.GenreID, t.Milliseconds, t.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert staging row for track %d: %w", t.TrackID, err)
			}
		}

		return nil
	})
}

// GetStagingTracks returns the current staging snapshot ordered by id
func (s *Store) GetStagingTracks() ([]*EnrichedTrack, error) {
	rows, err := s.db.Query(`
		SELECT track_id, name, final_composer, album_id, genre_id, milliseconds, unit_price
		FROM staging_track_cleaned
		ORDER BY track_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staging table: %w", err)
	}
	defer rows.Close()

	var tracks []*EnrichedTrack
	for rows.Next() {
		t := &EnrichedTrack{}
		err := rows.Scan(&t.TrackID, &t.Name, &t.FinalComposer,
			&t.AlbumID, &t.GenreID, &t.Milliseconds, &t.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging row: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

// CountStaging returns the number of rows in staging_track_cleaned
func (s *Store) CountStaging() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM staging_track_cleaned`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count staging rows: %w", err)
	}
	return count, nil
}
