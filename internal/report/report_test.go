package report

import (
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/music-store-analytics/internal/store"
)

// The fixture covers the interesting shapes: clean rows, null composers,
// null references, dangling references and an invoice line with no
// quantity. Revenue assertions below are derived from these rows.
func openFixtureStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "report-test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ns := func(s string) sql.NullString {
		if s == "" {
			return sql.NullString{}
		}
		return sql.NullString{Valid: true, String: s}
	}
	ni := func(i int64) sql.NullInt64 {
		if i == 0 {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Valid: true, Int64: i}
	}
	nf := func(f float64) sql.NullFloat64 {
		if f == 0 {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Valid: true, Float64: f}
	}

	if err := db.InsertArtistBatch([]*store.Artist{
		{ArtistID: 1, Name: "AC/DC"},
		{ArtistID: 2, Name: "Queen"},
	}); err != nil {
		t.Fatalf("failed to seed artists: %v", err)
	}

	// Album 3 points at an absent artist
	if err := db.InsertAlbumBatch([]*store.Album{
		{AlbumID: 1, Title: "Back In Black", ArtistID: 1},
		{AlbumID: 2, Title: "A Night At The Opera", ArtistID: 2},
		{AlbumID: 3, Title: "Orphaned Album", ArtistID: 99},
	}); err != nil {
		t.Fatalf("failed to seed albums: %v", err)
	}

	if err := db.InsertGenreBatch([]*store.Genre{
		{GenreID: 1, Name: "Rock"},
		{GenreID: 2, Name: "Jazz"},
	}); err != nil {
		t.Fatalf("failed to seed genres: %v", err)
	}

	// Track 4 has no album/genre/composer; track 5 points at absent ids
	if err := db.InsertTrackBatch([]*store.Track{
		{TrackID: 1, Name: "t1", AlbumID: ni(1), GenreID: ni(1), Composer: ns("Angus Young"), Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 2, Name: "t2", AlbumID: ni(1), GenreID: ni(1), Composer: ns(""), Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 3, Name: "t3", AlbumID: ni(2), GenreID: ni(2), Composer: ns("Freddie Mercury"), Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 4, Name: "t4", Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 5, Name: "t5", AlbumID: ni(77), GenreID: ni(88), Composer: ns("Ghost"), Milliseconds: 1000, UnitPrice: 0.99},
	}); err != nil {
		t.Fatalf("failed to seed tracks: %v", err)
	}

	if err := db.InsertEmployeeBatch([]*store.Employee{
		{EmployeeID: 1, FirstName: "Jane", LastName: "Doe", Title: ns("Support Agent")},
	}); err != nil {
		t.Fatalf("failed to seed employees: %v", err)
	}

	// Customer 2 has no country and no rep; customer 3 points at an
	// absent rep and has no invoices
	if err := db.InsertCustomerBatch([]*store.Customer{
		{CustomerID: 1, FirstName: "A", LastName: "A", Country: ns("USA"), SupportRepID: ni(1)},
		{CustomerID: 2, FirstName: "B", LastName: "B"},
		{CustomerID: 3, FirstName: "C", LastName: "C", Country: ns("USA"), SupportRepID: ni(5)},
	}); err != nil {
		t.Fatalf("failed to seed customers: %v", err)
	}

	if err := db.InsertInvoiceBatch([]*store.Invoice{
		{InvoiceID: 1, CustomerID: 1, InvoiceDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), Total: 5.94},
		{InvoiceID: 2, CustomerID: 1, InvoiceDate: time.Date(2024, 7, 3, 22, 5, 0, 0, time.UTC), Total: 100.00},
		{InvoiceID: 3, CustomerID: 2, InvoiceDate: time.Date(2024, 1, 20, 10, 45, 0, 0, time.UTC), Total: 3.96},
	}); err != nil {
		t.Fatalf("failed to seed invoices: %v", err)
	}

	// Line 5 has no track, line 6 a dangling track, line 7 no quantity,
	// line 8 no unit price
	if err := db.InsertInvoiceLineBatch([]*store.InvoiceLine{
		{InvoiceLineID: 1, InvoiceID: 1, TrackID: ni(1), UnitPrice: nf(0.99), Quantity: ni(2)},
		{InvoiceLineID: 2, InvoiceID: 1, TrackID: ni(2), UnitPrice: nf(0.99), Quantity: ni(2)},
		{InvoiceLineID: 3, InvoiceID: 1, TrackID: ni(3), UnitPrice: nf(0.99), Quantity: ni(2)},
		{InvoiceLineID: 4, InvoiceID: 2, TrackID: ni(4), UnitPrice: nf(0.99), Quantity: ni(1)},
		{InvoiceLineID: 5, InvoiceID: 2, UnitPrice: nf(0.99), Quantity: ni(1)},
		{InvoiceLineID: 6, InvoiceID: 2, TrackID: ni(999), UnitPrice: nf(0.99), Quantity: ni(1)},
		{InvoiceLineID: 7, InvoiceID: 3, TrackID: ni(5), UnitPrice: nf(0.99)},
		{InvoiceLineID: 8, InvoiceID: 3, TrackID: ni(3), Quantity: ni(2)},
	}); err != nil {
		t.Fatalf("failed to seed invoice lines: %v", err)
	}

	return db
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCustomerSegments(t *testing.T) {
	db := openFixtureStore(t)

	segments, err := CustomerSegments(db)
	if err != nil {
		t.Fatalf("segmentation failed: %v", err)
	}

	got := map[string]*CustomerSegment{}
	for _, s := range segments {
		got[s.Segment] = s
	}

	// Customer 1 spent 105.94, customer 2 spent 3.96, customer 3 nothing
	if s := got["Big Spender"]; s == nil || s.Customers != 1 || !almostEqual(s.Revenue, 105.94) {
		t.Errorf("big spender segment wrong: %+v", s)
	}
	if s := got["Casual"]; s == nil || s.Customers != 1 || !almostEqual(s.Revenue, 3.96) {
		t.Errorf("casual segment wrong: %+v", s)
	}
	if s := got["No Purchases"]; s == nil || s.Customers != 1 || !almostEqual(s.Revenue, 0) {
		t.Errorf("no-purchases segment wrong: %+v", s)
	}
	if len(got) != 3 {
		t.Errorf("unexpected segments: %v", got)
	}
}

func TestRevenueByCountryClassifiesUnknown(t *testing.T) {
	db := openFixtureStore(t)

	countries, err := RevenueByCountry(db)
	if err != nil {
		t.Fatalf("country rollup failed: %v", err)
	}

	got := map[string]*CountryRevenue{}
	for _, c := range countries {
		got[c.Country] = c
	}

	if c := got["USA"]; c == nil || c.Customers != 2 || !almostEqual(c.Revenue, 105.94) {
		t.Errorf("USA rollup wrong: %+v", c)
	}
	if c := got["(unknown)"]; c == nil || c.Customers != 1 || !almostEqual(c.Revenue, 3.96) {
		t.Errorf("unknown-country bucket wrong: %+v", c)
	}
}

func TestSupportRepLoadGroupsUnassigned(t *testing.T) {
	db := openFixtureStore(t)

	load, err := SupportRepLoad(db)
	if err != nil {
		t.Fatalf("support load failed: %v", err)
	}

	got := map[string]*SupportLoad{}
	for _, s := range load {
		got[s.Rep] = s
	}

	if s := got["Jane Doe"]; s == nil || s.Customers != 1 || s.Invoices != 2 || !almostEqual(s.Revenue, 105.94) {
		t.Errorf("rep load wrong: %+v", s)
	}

	// Customer 2 has no rep and customer 3 points at an absent one;
	// both land in the same bucket
	if s := got["(unassigned)"]; s == nil || s.Customers != 2 || s.Invoices != 1 {
		t.Errorf("unassigned bucket wrong: %+v", s)
	}
}

func TestGenreRevenueShareClassifiesEveryLine(t *testing.T) {
	db := openFixtureStore(t)

	genres, err := GenreRevenueShare(db)
	if err != nil {
		t.Fatalf("genre share failed: %v", err)
	}

	got := map[string]*GenreRevenue{}
	var total float64
	for _, g := range genres {
		got[g.Genre] = g
		total += g.Revenue
	}

	if g := got["Rock"]; g == nil || g.Tracks != 2 || !almostEqual(g.Revenue, 3.96) {
		t.Errorf("rock share wrong: %+v", g)
	}
	if g := got["Jazz"]; g == nil || g.Tracks != 1 || !almostEqual(g.Revenue, 1.98) {
		t.Errorf("jazz share wrong: %+v", g)
	}
	if g := got["(no genre)"]; g == nil || !almostEqual(g.Revenue, 0.99) {
		t.Errorf("no-genre bucket wrong: %+v", g)
	}
	if g := got["(no track)"]; g == nil || !almostEqual(g.Revenue, 0.99) {
		t.Errorf("no-track bucket wrong: %+v", g)
	}
	if g := got["(missing track)"]; g == nil || !almostEqual(g.Revenue, 0.99) {
		t.Errorf("missing-track bucket wrong: %+v", g)
	}

	// Every line with a computable amount is classified somewhere, so
	// the buckets sum to the full computable line revenue
	if !almostEqual(total, 8.91) {
		t.Errorf("genre buckets sum to %.2f, want 8.91", total)
	}
}

func TestArtistRevenueShareClassifiesBrokenReferences(t *testing.T) {
	db := openFixtureStore(t)

	artists, err := ArtistRevenueShare(db)
	if err != nil {
		t.Fatalf("artist share failed: %v", err)
	}

	got := map[string]*ArtistRevenue{}
	var total float64
	for _, a := range artists {
		got[a.Artist] = a
		total += a.Revenue
	}

	if a := got["AC/DC"]; a == nil || !almostEqual(a.Revenue, 3.96) {
		t.Errorf("AC/DC share wrong: %+v", a)
	}
	if a := got["Queen"]; a == nil || !almostEqual(a.Revenue, 1.98) {
		t.Errorf("Queen share wrong: %+v", a)
	}
	if a := got["(no album)"]; a == nil || !almostEqual(a.Revenue, 0.99) {
		t.Errorf("no-album bucket wrong: %+v", a)
	}
	// Lines with no track or a dangling track share a bucket
	if a := got["(no track)"]; a == nil || !almostEqual(a.Revenue, 1.98) {
		t.Errorf("no-track bucket wrong: %+v", a)
	}
	// Track 5's line has no quantity, so the bucket exists with zero revenue
	if a := got["(missing album)"]; a == nil || !almostEqual(a.Revenue, 0) {
		t.Errorf("missing-album bucket wrong: %+v", a)
	}

	if !almostEqual(total, 8.91) {
		t.Errorf("artist buckets sum to %.2f, want 8.91", total)
	}
}

func TestComposerRevenueImpactBucketsSumToTotal(t *testing.T) {
	db := openFixtureStore(t)

	impact, err := ComposerRevenueImpact(db, false)
	if err != nil {
		t.Fatalf("composer impact failed: %v", err)
	}

	got := map[string]*ComposerImpact{}
	var total float64
	for _, c := range impact {
		got[c.Bucket] = c
		total += c.Revenue
	}

	// Tracks 1, 3 and 5 carry a composer; tracks 2 and 4 do not
	if c := got["Has Composer"]; c == nil || c.Tracks != 3 || !almostEqual(c.Revenue, 3.96) {
		t.Errorf("has-composer bucket wrong: %+v", c)
	}
	if c := got["Missing Composer"]; c == nil || c.Tracks != 2 || !almostEqual(c.Revenue, 2.97) {
		t.Errorf("missing-composer bucket wrong: %+v", c)
	}

	// The two buckets partition attributed line revenue
	if !almostEqual(total, 6.93) {
		t.Errorf("composer buckets sum to %.2f, want 6.93", total)
	}
}

func TestComposerRevenueImpactAfterEnrichment(t *testing.T) {
	db := openFixtureStore(t)

	// Simulate an enrichment run that filled track 2 from its album
	// majority; the rest carry over unchanged
	staged := []*store.EnrichedTrack{
		{TrackID: 1, Name: "t1", FinalComposer: sql.NullString{Valid: true, String: "Angus Young"}, Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 2, Name: "t2", FinalComposer: sql.NullString{Valid: true, String: "Angus Young"}, Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 3, Name: "t3", FinalComposer: sql.NullString{Valid: true, String: "Freddie Mercury"}, Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 4, Name: "t4", Milliseconds: 1000, UnitPrice: 0.99},
		{TrackID: 5, Name: "t5", FinalComposer: sql.NullString{Valid: true, String: "Ghost"}, Milliseconds: 1000, UnitPrice: 0.99},
	}
	if err := db.ReplaceStaging(staged); err != nil {
		t.Fatalf("failed to stage enriched tracks: %v", err)
	}

	impact, err := ComposerRevenueImpact(db, true)
	if err != nil {
		t.Fatalf("enriched composer impact failed: %v", err)
	}

	got := map[string]*ComposerImpact{}
	for _, c := range impact {
		got[c.Bucket] = c
	}

	// Track 2's revenue moved into the attributed bucket
	if c := got["Has Composer"]; c == nil || c.Tracks != 4 || !almostEqual(c.Revenue, 5.94) {
		t.Errorf("enriched has-composer bucket wrong: %+v", c)
	}
	if c := got["Missing Composer"]; c == nil || c.Tracks != 1 || !almostEqual(c.Revenue, 0.99) {
		t.Errorf("enriched missing-composer bucket wrong: %+v", c)
	}
}

func TestLostRevenueEstimate(t *testing.T) {
	db := openFixtureStore(t)

	lost, err := LostRevenueEstimate(db)
	if err != nil {
		t.Fatalf("lost revenue failed: %v", err)
	}

	// Only line 7 has no quantity; assuming quantity = 1 it carries 0.99
	if lost.Lines != 1 {
		t.Errorf("expected 1 unquantified line, got %d", lost.Lines)
	}
	if !almostEqual(lost.Estimate, 0.99) {
		t.Errorf("expected estimate 0.99, got %.2f", lost.Estimate)
	}
}

func TestInvoicesByHour(t *testing.T) {
	db := openFixtureStore(t)

	hours, err := InvoicesByHour(db)
	if err != nil {
		t.Fatalf("hour buckets failed: %v", err)
	}

	got := map[int]*HourBucket{}
	for _, h := range hours {
		got[h.Hour] = h
	}

	if h := got[10]; h == nil || h.Invoices != 2 || !almostEqual(h.Revenue, 9.90) {
		t.Errorf("10:00 bucket wrong: %+v", h)
	}
	if h := got[22]; h == nil || h.Invoices != 1 || !almostEqual(h.Revenue, 100.00) {
		t.Errorf("22:00 bucket wrong: %+v", h)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 hour buckets, got %v", got)
	}
}

func TestSeasonality(t *testing.T) {
	db := openFixtureStore(t)

	months, err := Seasonality(db)
	if err != nil {
		t.Fatalf("seasonality failed: %v", err)
	}

	got := map[int]*MonthBucket{}
	for _, m := range months {
		got[m.Month] = m
	}

	if m := got[1]; m == nil || m.Invoices != 2 || !almostEqual(m.Revenue, 9.90) {
		t.Errorf("january bucket wrong: %+v", m)
	}
	if m := got[7]; m == nil || m.Invoices != 1 || !almostEqual(m.Revenue, 100.00) {
		t.Errorf("july bucket wrong: %+v", m)
	}
}

func TestNullAudits(t *testing.T) {
	db := openFixtureStore(t)

	audits, err := NullAudits(db)
	if err != nil {
		t.Fatalf("null audit failed: %v", err)
	}

	got := map[string]*NullAudit{}
	for _, a := range audits {
		got[a.Table+"."+a.Column] = a
	}

	// Track 2's composer is blank and track 4's is null; both count
	if a := got["tracks.composer"]; a == nil || a.Nulls != 2 || a.Total != 5 {
		t.Errorf("composer audit wrong: %+v", a)
	}
	if a := got["invoice_lines.quantity"]; a == nil || a.Nulls != 1 {
		t.Errorf("quantity audit wrong: %+v", a)
	}
	if a := got["invoice_lines.unit_price"]; a == nil || a.Nulls != 1 {
		t.Errorf("unit price audit wrong: %+v", a)
	}
	if a := got["customers.country"]; a == nil || a.Nulls != 1 {
		t.Errorf("country audit wrong: %+v", a)
	}
}

func TestMissingReferences(t *testing.T) {
	db := openFixtureStore(t)

	refs, err := MissingReferences(db)
	if err != nil {
		t.Fatalf("reference audit failed: %v", err)
	}

	got := map[string]int{}
	for _, r := range refs {
		got[r.Kind] = r.Count
	}

	want := map[string]int{
		"tracks -> missing album":          1, // track 5
		"tracks -> missing genre":          1, // track 5
		"albums -> missing artist":         1, // album 3
		"invoice_lines -> missing track":   1, // line 6
		"customers -> missing support rep": 1, // customer 3
	}
	for kind, count := range want {
		if got[kind] != count {
			t.Errorf("%s: got %d, want %d", kind, got[kind], count)
		}
	}
}

func TestGenerateAndWriteMarkdown(t *testing.T) {
	db := openFixtureStore(t)

	r, err := Generate(db, NullLogger())
	if err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	if len(r.Segments) == 0 || len(r.Genres) == 0 || len(r.Artists) == 0 {
		t.Fatalf("report missing sections: %+v", r)
	}
	if len(r.ComposerStaged) != 0 {
		t.Errorf("expected no staged impact before enrichment, got %+v", r.ComposerStaged)
	}

	out := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdownReport(r, out); err != nil {
		t.Fatalf("markdown write failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	md := string(data)

	for _, section := range []string{
		"# Music Store Analytics",
		"## Customer Segments",
		"## Genre Revenue Share",
		"## Composer Attribution Impact",
		"## Lost Revenue Estimate",
		"## Purchases by Hour",
	} {
		if !strings.Contains(md, section) {
			t.Errorf("report missing section %q", section)
		}
	}
}
