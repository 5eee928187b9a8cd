// Package enrich implements the composer enrichment pipeline: count
// composer occurrences per album, resolve a majority composer, and
// fill tracks whose composer tag is missing. Known composer values are
// never overwritten.
package enrich

import (
	"sort"
	"strings"

	"github.com/franz/music-store-analytics/internal/store"
)

// AlbumKey identifies the album grouping of a track. Tracks without an
// album share the zero key; they are counted but can never be resolved
// because majority resolution works per album.
type AlbumKey struct {
	Valid bool
	ID    int64
}

func albumKeyOf(t *store.Track) AlbumKey {
	if !t.AlbumID.Valid {
		return AlbumKey{}
	}
	return AlbumKey{Valid: true, ID: t.AlbumID.Int64}
}

// Stats maps each album to the occurrence count of every known
// composer among its tracks. Composers that are null or blank in the
// source are not counted.
type Stats map[AlbumKey]map[string]int

// GroupStats counts (album, composer) occurrences over the track set
func GroupStats(tracks []*store.Track) Stats {
	stats := make(Stats)

	for _, t := range tracks {
		composer := knownComposer(t)
		if composer == "" {
			continue
		}

		key := albumKeyOf(t)
		if stats[key] == nil {
			stats[key] = make(map[string]int)
		}
		stats[key][composer]++
	}

	return stats
}

// ResolveMajority picks, for each album, the composer with the highest
// occurrence count. Ties are broken deterministically: the
// lexicographically smallest composer wins, so repeated runs over the
// same snapshot always produce the same result. Albums with no known
// composer have no entry.
func ResolveMajority(stats Stats) map[int64]string {
	majority := make(map[int64]string)

	for key, counts := range stats {
		if !key.Valid {
			continue
		}

		composers := make([]string, 0, len(counts))
		for c := range counts {
			composers = append(composers, c)
		}
		sort.Strings(composers)

		var winner string
		var maxCount int
		for _, c := range composers {
			if counts[c] > maxCount {
				maxCount = counts[c]
				winner = c
			}
		}

		majority[key.ID] = winner
	}

	return majority
}

// Fill produces one enriched record per track: the original composer
// when present, the album's majority composer when the original is
// missing, and null when neither exists. A present composer is passed
// through verbatim; trimming is only used to decide presence. All
// other fields pass through unchanged.
func Fill(tracks []*store.Track, majority map[int64]string) []*store.EnrichedTrack {
	enriched := make([]*store.EnrichedTrack, 0, len(tracks))

	for _, t := range tracks {
		e := &store.EnrichedTrack{
			TrackID:      t.TrackID,
			Name:         t.Name,
			AlbumID:      t.AlbumID,
			GenreID:      t.GenreID,
			Milliseconds: t.Milliseconds,
			UnitPrice:    t.UnitPrice,
		}

		if knownComposer(t) != "" {
			e.FinalComposer = t.Composer
		} else if t.AlbumID.Valid {
			if inferred, ok := majority[t.AlbumID.Int64]; ok {
				e.FinalComposer.Valid = true
				e.FinalComposer.String = inferred
			}
		}

		enriched = append(enriched, e)
	}

	return enriched
}

// knownComposer returns the track's composer if it is non-null and
// non-blank, otherwise ""
func knownComposer(t *store.Track) string {
	if !t.Composer.Valid {
		return ""
	}
	return strings.TrimSpace(t.Composer.String)
}
