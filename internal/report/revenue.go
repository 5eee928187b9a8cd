package report

import (
	"fmt"

	"github.com/franz/music-store-analytics/internal/store"
)

// Line revenue is unit_price * quantity. SQL null semantics do the
// right thing here: a null price or quantity makes the product null
// and SUM skips it, so nulls never silently count as zero. The lost
// revenue estimate below is the one place that fills in a value.

// GenreRevenue is revenue attributed to one genre
type GenreRevenue struct {
	Genre   string
	Tracks  int
	Revenue float64
}

// GenreRevenueShare attributes line revenue to genres through tracks.
// Lines whose track has no genre, or no track at all, are reported in
// explicit "(no genre)" / "(no track)" buckets.
func GenreRevenueShare(db *store.Store) ([]*GenreRevenue, error) {
	rows, err := db.DB().Query(`
		SELECT
			CASE
				WHEN il.track_id IS NULL THEN '(no track)'
				WHEN t.track_id IS NULL THEN '(missing track)'
				WHEN g.name IS NULL THEN '(no genre)'
				ELSE g.name
			END AS genre,
			COUNT(DISTINCT t.track_id) AS tracks,
			COALESCE(SUM(il.unit_price * il.quantity), 0) AS revenue
		FROM invoice_lines il
		LEFT JOIN tracks t ON t.track_id = il.track_id
		LEFT JOIN genres g ON g.genre_id = t.genre_id
		GROUP BY genre
		ORDER BY revenue DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre revenue: %w", err)
	}
	defer rows.Close()

	var results []*GenreRevenue
	for rows.Next() {
		r := &GenreRevenue{}
		if err := rows.Scan(&r.Genre, &r.Tracks, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan genre revenue: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// ArtistRevenue is revenue attributed to one artist
type ArtistRevenue struct {
	Artist  string
	Albums  int
	Revenue float64
}

// ArtistRevenueShare attributes line revenue to artists through
// tracks and albums. Broken references are classified, never dropped:
// a track without an album lands in "(no album)", a track pointing at
// an album that is not in the snapshot in "(missing album)", and an
// album pointing at an absent artist in "(missing artist)".
func ArtistRevenueShare(db *store.Store) ([]*ArtistRevenue, error) {
	rows, err := db.DB().Query(`
		SELECT
			CASE
				WHEN il.track_id IS NULL OR t.track_id IS NULL THEN '(no track)'
				WHEN t.album_id IS NULL THEN '(no album)'
				WHEN al.album_id IS NULL THEN '(missing album)'
				WHEN ar.artist_id IS NULL THEN '(missing artist)'
				ELSE ar.name
			END AS artist,
			COUNT(DISTINCT al.album_id) AS albums,
			COALESCE(SUM(il.unit_price * il.quantity), 0) AS revenue
		FROM invoice_lines il
		LEFT JOIN tracks t ON t.track_id = il.track_id
		LEFT JOIN albums al ON al.album_id = t.album_id
		LEFT JOIN artists ar ON ar.artist_id = al.artist_id
		GROUP BY artist
		ORDER BY revenue DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist revenue: %w", err)
	}
	defer rows.Close()

	var results []*ArtistRevenue
	for rows.Next() {
		r := &ArtistRevenue{}
		if err := rows.Scan(&r.Artist, &r.Albums, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan artist revenue: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// ComposerImpact splits line revenue by composer presence
type ComposerImpact struct {
	Bucket  string // "Has Composer" or "Missing Composer"
	Tracks  int
	Revenue float64
}

// ComposerRevenueImpact reports how much revenue rides on tracks with
// and without a composer tag. The two buckets sum to total attributed
// line revenue. With enriched=true the staging table's final_composer
// is used instead of the raw tag, showing the impact after enrichment.
func ComposerRevenueImpact(db *store.Store, enriched bool) ([]*ComposerImpact, error) {
	trackTable := "tracks"
	composerCol := "composer"
	if enriched {
		trackTable = "staging_track_cleaned"
		composerCol = "final_composer"
	}

	query := fmt.Sprintf(`
		SELECT
			CASE
				WHEN t.%s IS NOT NULL AND TRIM(t.%s) != '' THEN 'Has Composer'
				ELSE 'Missing Composer'
			END AS bucket,
			COUNT(DISTINCT t.track_id) AS tracks,
			COALESCE(SUM(il.unit_price * il.quantity), 0) AS revenue
		FROM invoice_lines il
		JOIN %s t ON t.track_id = il.track_id
		GROUP BY bucket
		ORDER BY bucket
	`, composerCol, composerCol, trackTable)

	rows, err := db.DB().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query composer impact: %w", err)
	}
	defer rows.Close()

	var results []*ComposerImpact
	for rows.Next() {
		r := &ComposerImpact{}
		if err := rows.Scan(&r.Bucket, &r.Tracks, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan composer impact: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// LostRevenue is the estimate of revenue on incomplete invoice lines
type LostRevenue struct {
	Lines    int
	Estimate float64
}

// LostRevenueEstimate estimates revenue on lines whose quantity is
// null. Estimation assumes missing quantity = 1; lines with a null
// unit price stay unestimable and are only counted.
func LostRevenueEstimate(db *store.Store) (*LostRevenue, error) {
	r := &LostRevenue{}
	err := db.DB().QueryRow(`
		SELECT
			COUNT(*) AS lines,
			COALESCE(SUM(unit_price * 1), 0) AS estimate
		FROM invoice_lines
		WHERE quantity IS NULL
	`).Scan(&r.Lines, &r.Estimate)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate lost revenue: %w", err)
	}

	return r, nil
}
