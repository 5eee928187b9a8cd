package report

import (
	"fmt"

	"github.com/franz/music-store-analytics/internal/store"
)

// HourBucket is invoice activity within one hour of the day
type HourBucket struct {
	Hour     int // 0-23
	Invoices int
	Revenue  float64
}

// InvoicesByHour buckets invoices by hour of day across the whole
// snapshot. Hours with no invoices are absent from the result.
func InvoicesByHour(db *store.Store) ([]*HourBucket, error) {
	rows, err := db.DB().Query(`
		SELECT
			CAST(strftime('%H', invoice_date) AS INTEGER) AS hour,
			COUNT(*) AS invoices,
			SUM(total) AS revenue
		FROM invoices
		GROUP BY hour
		ORDER BY hour
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by hour: %w", err)
	}
	defer rows.Close()

	var buckets []*HourBucket
	for rows.Next() {
		b := &HourBucket{}
		if err := rows.Scan(&b.Hour, &b.Invoices, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan hour bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// MonthBucket is invoice activity within one calendar month,
// aggregated across years
type MonthBucket struct {
	Month    int // 1-12
	Invoices int
	Revenue  float64
}

// Seasonality buckets invoices by calendar month across years
func Seasonality(db *store.Store) ([]*MonthBucket, error) {
	rows, err := db.DB().Query(`
		SELECT
			CAST(strftime('%m', invoice_date) AS INTEGER) AS month,
			COUNT(*) AS invoices,
			SUM(total) AS revenue
		FROM invoices
		GROUP BY month
		ORDER BY month
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasonality: %w", err)
	}
	defer rows.Close()

	var buckets []*MonthBucket
	for rows.Next() {
		b := &MonthBucket{}
		if err := rows.Scan(&b.Month, &b.Invoices, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan month bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}
