package report

import (
	"fmt"

	"github.com/franz/music-store-analytics/internal/store"
)

// CustomerSegment is one spend bucket of the customer base
type CustomerSegment struct {
	Segment   string
	Customers int
	Revenue   float64
}

// Spend thresholds for customer segmentation (lifetime invoice total)
const (
	regularSpendFloor = 40.0
	bigSpendFloor     = 100.0
)

// CustomerSegments buckets customers by lifetime spend. Customers
// without any invoice land in the "No Purchases" segment.
func CustomerSegments(db *store.Store) ([]*CustomerSegment, error) {
	rows, err := db.DB().Query(`
		SELECT
			CASE
				WHEN COALESCE(spend.total, 0) = 0 THEN 'No Purchases'
				WHEN spend.total >= ? THEN 'Big Spender'
				WHEN spend.total >= ? THEN 'Regular'
				ELSE 'Casual'
			END AS segment,
			COUNT(*) AS customers,
			SUM(COALESCE(spend.total, 0)) AS revenue
		FROM customers c
		LEFT JOIN (
			SELECT customer_id, SUM(total) AS total
			FROM invoices
			GROUP BY customer_id
		) spend ON spend.customer_id = c.customer_id
		GROUP BY segment
		ORDER BY revenue DESC
	`, bigSpendFloor, regularSpendFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer segments: %w", err)
	}
	defer rows.Close()

	var segments []*CustomerSegment
	for rows.Next() {
		s := &CustomerSegment{}
		if err := rows.Scan(&s.Segment, &s.Customers, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan customer segment: %w", err)
		}
		segments = append(segments, s)
	}

	return segments, rows.Err()
}

// CountryRevenue is revenue attributed to one billing country
type CountryRevenue struct {
	Country   string
	Customers int
	Revenue   float64
}

// RevenueByCountry rolls customer revenue up by country. Customers
// without a country are reported under "(unknown)" rather than dropped.
func RevenueByCountry(db *store.Store) ([]*CountryRevenue, error) {
	rows, err := db.DB().Query(`
		SELECT
			COALESCE(c.country, '(unknown)') AS country,
			COUNT(DISTINCT c.customer_id) AS customers,
			COALESCE(SUM(i.total), 0) AS revenue
		FROM customers c
		LEFT JOIN invoices i ON i.customer_id = c.customer_id
		GROUP BY country
		ORDER BY revenue DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by country: %w", err)
	}
	defer rows.Close()

	var results []*CountryRevenue
	for rows.Next() {
		r := &CountryRevenue{}
		if err := rows.Scan(&r.Country, &r.Customers, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan country revenue: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// SupportLoad is the invoice volume handled per support rep
type SupportLoad struct {
	Rep       string
	Title     string
	Customers int
	Invoices  int
	Revenue   float64
}

// SupportRepLoad reports how many customers and invoices each support
// rep carries. Customers with no rep are grouped under "(unassigned)".
func SupportRepLoad(db *store.Store) ([]*SupportLoad, error) {
	rows, err := db.DB().Query(`
		SELECT
			COALESCE(e.first_name || ' ' || e.last_name, '(unassigned)') AS rep,
			COALESCE(e.title, '') AS title,
			COUNT(DISTINCT c.customer_id) AS customers,
			COUNT(i.invoice_id) AS invoices,
			COALESCE(SUM(i.total), 0) AS revenue
		FROM customers c
		LEFT JOIN employees e ON e.employee_id = c.support_rep_id
		LEFT JOIN invoices i ON i.customer_id = c.customer_id
		GROUP BY rep, title
		ORDER BY invoices DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query support load: %w", err)
	}
	defer rows.Close()

	var results []*SupportLoad
	for rows.Next() {
		s := &SupportLoad{}
		if err := rows.Scan(&s.Rep, &s.Title, &s.Customers, &s.Invoices, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan support load: %w", err)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}
