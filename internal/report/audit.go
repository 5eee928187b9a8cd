package report

import (
	"fmt"

	"github.com/franz/music-store-analytics/internal/store"
)

// NullAudit reports null counts for one nullable column
type NullAudit struct {
	Table  string
	Column string
	Nulls  int
	Total  int
}

// nullAuditTargets lists the nullable columns the audit inspects.
// TRIM handles composer tags that are present but blank.
var nullAuditTargets = []struct {
	table, column, predicate string
}{
	{"tracks", "composer", "composer IS NULL OR TRIM(composer) = ''"},
	{"tracks", "album_id", "album_id IS NULL"},
	{"tracks", "genre_id", "genre_id IS NULL"},
	{"invoice_lines", "track_id", "track_id IS NULL"},
	{"invoice_lines", "unit_price", "unit_price IS NULL"},
	{"invoice_lines", "quantity", "quantity IS NULL"},
	{"customers", "country", "country IS NULL"},
	{"customers", "support_rep_id", "support_rep_id IS NULL"},
}

// NullAudits counts nulls in every audited column
func NullAudits(db *store.Store) ([]*NullAudit, error) {
	var audits []*NullAudit

	for _, target := range nullAuditTargets {
		a := &NullAudit{Table: target.table, Column: target.column}
		// COALESCE keeps the scan from seeing NULL on an empty table
		query := fmt.Sprintf(`
			SELECT
				COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0),
				COUNT(*)
			FROM %s
		`, target.predicate, target.table)

		if err := db.DB().QueryRow(query).Scan(&a.Nulls, &a.Total); err != nil {
			return nil, fmt.Errorf("failed to audit %s.%s: %w", target.table, target.column, err)
		}
		audits = append(audits, a)
	}

	return audits, nil
}

// MissingReference reports dangling foreign keys of one kind
type MissingReference struct {
	Kind  string
	Count int
}

// MissingReferences counts rows that point at ids absent from the
// snapshot. These are data-quality signals, not fatal errors; the
// revenue reports classify the same rows into explicit buckets.
func MissingReferences(db *store.Store) ([]*MissingReference, error) {
	checks := []struct {
		kind  string
		query string
	}{
		{"tracks -> missing album", `
			SELECT COUNT(*) FROM tracks t
			WHERE t.album_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM albums a WHERE a.album_id = t.album_id)
		`},
		{"tracks -> missing genre", `
			SELECT COUNT(*) FROM tracks t
			WHERE t.genre_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM genres g WHERE g.genre_id = t.genre_id)
		`},
		{"albums -> missing artist", `
			SELECT COUNT(*) FROM albums al
			WHERE NOT EXISTS (SELECT 1 FROM artists ar WHERE ar.artist_id = al.artist_id)
		`},
		{"invoice_lines -> missing track", `
			SELECT COUNT(*) FROM invoice_lines il
			WHERE il.track_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM tracks t WHERE t.track_id = il.track_id)
		`},
		{"customers -> missing support rep", `
			SELECT COUNT(*) FROM customers c
			WHERE c.support_rep_id IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM employees e WHERE e.employee_id = c.support_rep_id)
		`},
	}

	var results []*MissingReference
	for _, check := range checks {
		r := &MissingReference{Kind: check.kind}
		if err := db.DB().QueryRow(check.query).Scan(&r.Count); err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", check.kind, err)
		}
		results = append(results, r)
	}

	return results, nil
}
