package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
)

// AnalyticsReport bundles every reporting query over one snapshot
type AnalyticsReport struct {
	GeneratedAt  time.Time
	DatabasePath string

	Segments       []*CustomerSegment
	Countries      []*CountryRevenue
	Support        []*SupportLoad
	Genres         []*GenreRevenue
	Artists        []*ArtistRevenue
	ComposerRaw    []*ComposerImpact
	ComposerStaged []*ComposerImpact // empty when staging has not been populated
	Lost           *LostRevenue
	Hours          []*HourBucket
	Months         []*MonthBucket
}

// Generate runs all reporting queries against the snapshot
func Generate(db *store.Store, logger *EventLogger) (*AnalyticsReport, error) {
	r := &AnalyticsReport{GeneratedAt: time.Now()}

	var err error
	if r.Segments, err = CustomerSegments(db); err != nil {
		return nil, err
	}
	if r.Countries, err = RevenueByCountry(db); err != nil {
		return nil, err
	}
	if r.Support, err = SupportRepLoad(db); err != nil {
		return nil, err
	}
	if r.Genres, err = GenreRevenueShare(db); err != nil {
		return nil, err
	}
	if r.Artists, err = ArtistRevenueShare(db); err != nil {
		return nil, err
	}
	if r.ComposerRaw, err = ComposerRevenueImpact(db, false); err != nil {
		return nil, err
	}

	// The enriched variant only makes sense once the staging table has
	// been filled by an enrichment run
	staged, err := db.CountStaging()
	if err != nil {
		return nil, err
	}
	if staged > 0 {
		if r.ComposerStaged, err = ComposerRevenueImpact(db, true); err != nil {
			return nil, err
		}
	}

	if r.Lost, err = LostRevenueEstimate(db); err != nil {
		return nil, err
	}
	if r.Hours, err = InvoicesByHour(db); err != nil {
		return nil, err
	}
	if r.Months, err = Seasonality(db); err != nil {
		return nil, err
	}

	logger.LogReport("analytics", len(r.Segments)+len(r.Genres)+len(r.Artists))

	return r, nil
}

// WriteMarkdownReport writes the analytics report as Markdown
func WriteMarkdownReport(r *AnalyticsReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# Music Store Analytics\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	if r.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", r.DatabasePath))
	}
	md.WriteString("---\n\n")

	// Customer segmentation
	md.WriteString("## Customer Segments\n\n")
	md.WriteString("| Segment | Customers | Revenue |\n")
	md.WriteString("|---------|-----------|--------|\n")
	for _, s := range r.Segments {
		md.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			s.Segment, util.FormatCount(s.Customers), util.FormatMoney(s.Revenue)))
	}
	md.WriteString("\n")

	// Country rollup
	if len(r.Countries) > 0 {
		md.WriteString("## Revenue by Country\n\n")
		md.WriteString("| Country | Customers | Revenue |\n")
		md.WriteString("|---------|-----------|--------|\n")
		for _, c := range r.Countries {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				c.Country, util.FormatCount(c.Customers), util.FormatMoney(c.Revenue)))
		}
		md.WriteString("\n")
	}

	// Support load
	if len(r.Support) > 0 {
		md.WriteString("## Support Rep Load\n\n")
		md.WriteString("| Rep | Customers | Invoices | Revenue |\n")
		md.WriteString("|-----|-----------|----------|--------|\n")
		for _, s := range r.Support {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				s.Rep, util.FormatCount(s.Customers),
				util.FormatCount(s.Invoices), util.FormatMoney(s.Revenue)))
		}
		md.WriteString("\n")
	}

	// Genre share
	md.WriteString("## Genre Revenue Share\n\n")
	writeRevenueShareTable(&md, "Genre", genreRows(r.Genres))

	// Artist share
	md.WriteString("## Artist Revenue Share\n\n")
	writeRevenueShareTable(&md, "Artist", artistRows(r.Artists))

	// Composer impact
	md.WriteString("## Composer Attribution Impact\n\n")
	md.WriteString("*Revenue split by composer presence on the sold track.*\n\n")
	md.WriteString("| Bucket | Tracks | Revenue |\n")
	md.WriteString("|--------|--------|--------|\n")
	for _, c := range r.ComposerRaw {
		md.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			c.Bucket, util.FormatCount(c.Tracks), util.FormatMoney(c.Revenue)))
	}
	md.WriteString("\n")

	if len(r.ComposerStaged) > 0 {
		md.WriteString("After enrichment (staging snapshot):\n\n")
		md.WriteString("| Bucket | Tracks | Revenue |\n")
		md.WriteString("|--------|--------|--------|\n")
		for _, c := range r.ComposerStaged {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				c.Bucket, util.FormatCount(c.Tracks), util.FormatMoney(c.Revenue)))
		}
		md.WriteString("\n")
	}

	// Lost revenue
	if r.Lost != nil && r.Lost.Lines > 0 {
		md.WriteString("## Lost Revenue Estimate\n\n")
		md.WriteString(fmt.Sprintf("%s invoice lines have no quantity; assuming quantity = 1 they carry an estimated %s.\n\n",
			util.FormatCount(r.Lost.Lines), util.FormatMoney(r.Lost.Estimate)))
	}

	// Time patterns
	if len(r.Hours) > 0 {
		md.WriteString("## Purchases by Hour\n\n")
		md.WriteString("| Hour | Invoices | Revenue |\n")
		md.WriteString("|------|----------|--------|\n")
		for _, h := range r.Hours {
			md.WriteString(fmt.Sprintf("| %02d:00 | %s | %s |\n",
				h.Hour, util.FormatCount(h.Invoices), util.FormatMoney(h.Revenue)))
		}
		md.WriteString("\n")
	}

	if len(r.Months) > 0 {
		md.WriteString("## Seasonality\n\n")
		md.WriteString("| Month | Invoices | Revenue |\n")
		md.WriteString("|-------|----------|--------|\n")
		for _, m := range r.Months {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				time.Month(m.Month).String(), util.FormatCount(m.Invoices), util.FormatMoney(m.Revenue)))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// shareRow is a generic (label, count, revenue) row for share tables
type shareRow struct {
	label   string
	count   int
	revenue float64
}

func genreRows(genres []*GenreRevenue) []shareRow {
	rows := make([]shareRow, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, shareRow{g.Genre, g.Tracks, g.Revenue})
	}
	return rows
}

func artistRows(artists []*ArtistRevenue) []shareRow {
	rows := make([]shareRow, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, shareRow{a.Artist, a.Albums, a.Revenue})
	}
	return rows
}

func writeRevenueShareTable(md *strings.Builder, label string, rows []shareRow) {
	var total float64
	for _, r := range rows {
		total += r.revenue
	}

	md.WriteString(fmt.Sprintf("| %s | Items | Revenue | Share |\n", label))
	md.WriteString("|------|-------|---------|-------|\n")
	for _, r := range rows {
		md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			r.label, util.FormatCount(r.count),
			util.FormatMoney(r.revenue), util.FormatPercent(r.revenue, total)))
	}
	md.WriteString("\n")
}
