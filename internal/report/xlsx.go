package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteXLSXReport writes the analytics report as an Excel workbook,
// one sheet per report section
func WriteXLSXReport(r *AnalyticsReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSegmentsSheet(f, r); err != nil {
		return err
	}
	if err := writeRevenueSheets(f, r); err != nil {
		return err
	}
	if err := writeTimeSheets(f, r); err != nil {
		return err
	}

	// Drop the default sheet left behind by excelize
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSegmentsSheet(f *excelize.File, r *AnalyticsReport) error {
	sheet := "Customers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Segment", "Customers", "Revenue"}}
	for _, s := range r.Segments {
		rows = append(rows, []interface{}{s.Segment, s.Customers, s.Revenue})
	}

	rows = append(rows, nil, []interface{}{"Country", "Customers", "Revenue"})
	for _, c := range r.Countries {
		rows = append(rows, []interface{}{c.Country, c.Customers, c.Revenue})
	}

	rows = append(rows, nil, []interface{}{"Support Rep", "Customers", "Invoices", "Revenue"})
	for _, s := range r.Support {
		rows = append(rows, []interface{}{s.Rep, s.Customers, s.Invoices, s.Revenue})
	}

	return writeRows(f, sheet, rows)
}

func writeRevenueSheets(f *excelize.File, r *AnalyticsReport) error {
	sheet := "Revenue"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Genre", "Tracks", "Revenue"}}
	for _, g := range r.Genres {
		rows = append(rows, []interface{}{g.Genre, g.Tracks, g.Revenue})
	}

	rows = append(rows, nil, []interface{}{"Artist", "Albums", "Revenue"})
	for _, a := range r.Artists {
		rows = append(rows, []interface{}{a.Artist, a.Albums, a.Revenue})
	}

	rows = append(rows, nil, []interface{}{"Composer Bucket", "Tracks", "Revenue"})
	for _, c := range r.ComposerRaw {
		rows = append(rows, []interface{}{c.Bucket, c.Tracks, c.Revenue})
	}
	for _, c := range r.ComposerStaged {
		rows = append(rows, []interface{}{c.Bucket + " (enriched)", c.Tracks, c.Revenue})
	}

	return writeRows(f, sheet, rows)
}

func writeTimeSheets(f *excelize.File, r *AnalyticsReport) error {
	sheet := "Time Patterns"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Hour", "Invoices", "Revenue"}}
	for _, h := range r.Hours {
		rows = append(rows, []interface{}{h.Hour, h.Invoices, h.Revenue})
	}

	rows = append(rows, nil, []interface{}{"Month", "Invoices", "Revenue"})
	for _, m := range r.Months {
		rows = append(rows, []interface{}{time.Month(m.Month).String(), m.Invoices, m.Revenue})
	}

	return writeRows(f, sheet, rows)
}

// writeRows writes rows top to bottom starting at A1; nil rows leave a
// blank spacer line
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
