package store

import (
	"database/sql"
	"fmt"
)

// Track represents a row of the tracks table. AlbumID, GenreID and
// Composer are nullable in the source data and stay nullable here so
// that audits can tell "missing" apart from zero values.
type Track struct {
	TrackID      int64
	Name         string
	AlbumID      sql.NullInt64
	GenreID      sql.NullInt64
	Composer     sql.NullString
	Milliseconds int64
	UnitPrice    float64
}

// Album represents a row of the albums table
type Album struct {
	AlbumID  int64
	Title    string
	ArtistID int64
}

// Artist represents a row of the artists table
type Artist struct {
	ArtistID int64
	Name     string
}

// Genre represents a row of the genres table
type Genre struct {
	GenreID int64
	Name    string
}

// GetAllTracks returns all tracks ordered by id
func (s *Store) GetAllTracks() ([]*Track, error) {
	rows, err := s.db.Query(`
		SELECT track_id, name, album_id, genre_id, composer, milliseconds, unit_price
		FROM tracks
		ORDER BY track_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		t := &Track{}
		err := rows.Scan(&t.TrackID, &t.Name, &t.AlbumID, &t.GenreID,
			&t.Composer, &t.Milliseconds, &t.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

// GetTrack returns one track by id, or nil if it does not exist
func (s *Store) GetTrack(trackID int64) (*Track, error) {
	t := &Track{}
	err := s.db.QueryRow(`
		SELECT track_id, name, album_id, genre_id, composer, milliseconds, unit_price
		FROM tracks WHERE track_id = ?
	`, trackID).Scan(&t.TrackID, &t.Name, &t.AlbumID, &t.GenreID,
		&t.Composer, &t.Milliseconds, &t.UnitPrice)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track %d: %w", trackID, err)
	}

	return t, nil
}

// GetAllAlbums returns all albums as a map indexed by album_id
func (s *Store) GetAllAlbums() (map[int64]*Album, error) {
	rows, err := s.db.Query(`SELECT album_id, title, artist_id FROM albums`)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := make(map[int64]*Album)
	for rows.Next() {
		a := &Album{}
		if err := rows.Scan(&a.AlbumID, &a.Title, &a.ArtistID); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums[a.AlbumID] = a
	}

	return albums, rows.Err()
}

// GetAllArtists returns all artists as a map indexed by artist_id
func (s *Store) GetAllArtists() (map[int64]*Artist, error) {
	rows, err := s.db.Query(`SELECT artist_id, name FROM artists`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := make(map[int64]*Artist)
	for rows.Next() {
		a := &Artist{}
		if err := rows.Scan(&a.ArtistID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists[a.ArtistID] = a
	}

	return artists, rows.Err()
}

// GetAllGenres returns all genres as a map indexed by genre_id
func (s *Store) GetAllGenres() (map[int64]*Genre, error) {
	rows, err := s.db.Query(`SELECT genre_id, name FROM genres`)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	genres := make(map[int64]*Genre)
	for rows.Next() {
		g := &Genre{}
		if err := rows.Scan(&g.GenreID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres[g.GenreID] = g
	}

	return genres, rows.Err()
}

// CountTracks returns the number of rows in the tracks table
func (s *Store) CountTracks() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// InsertTrackBatch inserts tracks in a single transaction
func (s *Store) InsertTrackBatch(tracks []*Track) error {
	if len(tracks) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO tracks
				(track_id, name, album_id, genre_id, composer, milliseconds, unit_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, t := range tracks {
			_, err := stmt.Exec(t.TrackID, t.Name, t.AlbumID, t.GenreID,
				t.Composer, t.Milliseconds, t.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert track %d: %w", t.TrackID, err)
			}
		}

		return nil
	})
}

// InsertAlbumBatch inserts albums in a single transaction
func (s *Store) InsertAlbumBatch(albums []*Album) error {
	if len(albums) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO albums (album_id, title, artist_id) VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range albums {
			if _, err := stmt.Exec(a.AlbumID, a.Title, a.ArtistID); err != nil {
				return fmt.Errorf("failed to insert album %d: %w", a.AlbumID, err)
			}
		}

		return nil
	})
}

// InsertArtistBatch inserts artists in a single transaction
func (s *Store) InsertArtistBatch(artists []*Artist) error {
	if len(artists) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO artists (artist_id, name) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range artists {
			if _, err := stmt.Exec(a.ArtistID, a.Name); err != nil {
				return fmt.Errorf("failed to insert artist %d: %w", a.ArtistID, err)
			}
		}

		return nil
	})
}

// InsertGenreBatch inserts genres in a single transaction
func (s *Store) InsertGenreBatch(genres []*Genre) error {
	if len(genres) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO genres (genre_id, name) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, g := range genres {
			if _, err := stmt.Exec(g.GenreID, g.Name); err != nil {
				return fmt.Errorf("failed to insert genre %d: %w", g.GenreID, err)
			}
		}

		return nil
	})
}
