// Package load imports catalog CSV exports into the SQLite snapshot.
// One file per table, header row required, empty fields become NULL.
package load

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/franz/music-store-analytics/internal/report"
	"github.com/franz/music-store-analytics/internal/store"
	"github.com/franz/music-store-analytics/internal/util"
	"github.com/schollz/progressbar/v3"
)

// Loader imports CSV exports into the catalog tables
type Loader struct {
	store        *store.Store
	logger       *report.EventLogger
	showProgress bool
}

// Config holds loader configuration
type Config struct {
	Store        *store.Store
	Logger       *report.EventLogger
	ShowProgress bool
}

// New creates a new Loader
func New(cfg *Config) *Loader {
	return &Loader{
		store:        cfg.Store,
		logger:       cfg.Logger,
		showProgress: cfg.ShowProgress,
	}
}

// Result represents the outcome of one import
type Result struct {
	TablesLoaded int
	RowsLoaded   int
	Skipped      []string // files not present in the import directory
}

// tableFiles maps CSV file names to their import functions, in
// dependency order (parents before children is not strictly required
// since the schema has no enforced FKs, but it keeps imports readable)
var tableOrder = []string{
	"artists.csv",
	"albums.csv",
	"genres.csv",
	"tracks.csv",
	"employees.csv",
	"customers.csv",
	"invoices.csv",
	"invoice_lines.csv",
}

// Load imports every known CSV file found in dir. Files that are not
// present are skipped and reported in the result.
func (l *Loader) Load(ctx context.Context, dir string) (*Result, error) {
	result := &Result{}

	for _, name := range tableOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		rows, err := l.loadFile(path, name)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", name, err)
		}

		l.logger.LogLoad(strings.TrimSuffix(name, ".csv"), rows)
		result.TablesLoaded++
		result.RowsLoaded += rows
	}

	return result, nil
}

// loadFile reads one CSV file and inserts its rows
func (l *Loader) loadFile(path, name string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		return 0, nil
	}

	var bar *progressbar.ProgressBar
	if l.showProgress {
		bar = progressbar.Default(int64(len(records)), name)
		defer bar.Finish()
	}

	tick := func(n int) {
		if bar != nil {
			bar.Add(n)
		}
	}

	switch name {
	case "artists.csv":
		return importArtists(l.store, records, tick)
	case "albums.csv":
		return importAlbums(l.store, records, tick)
	case "genres.csv":
		return importGenres(l.store, records, tick)
	case "tracks.csv":
		return importTracks(l.store, records, tick)
	case "employees.csv":
		return importEmployees(l.store, records, tick)
	case "customers.csv":
		return importCustomers(l.store, records, tick)
	case "invoices.csv":
		return importInvoices(l.store, records, tick)
	case "invoice_lines.csv":
		return importInvoiceLines(l.store, records, tick)
	}

	return 0, fmt.Errorf("%w: unknown file %s", util.ErrBadImport, name)
}

// readCSV reads all data records of a CSV file, skipping the header
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // validated per table instead

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrBadImport, err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	return records[1:], nil
}

func importArtists(db *store.Store, records [][]string, tick func(int)) (int, error) {
	artists := make([]*store.Artist, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			return 0, fmt.Errorf("%w: artist row needs 2 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad artist id %q", util.ErrBadImport, rec[0])
		}
		artists = append(artists, &store.Artist{ArtistID: id, Name: rec[1]})
		tick(1)
	}

	return len(artists), db.InsertArtistBatch(artists)
}

func importAlbums(db *store.Store, records [][]string, tick func(int)) (int, error) {
	albums := make([]*store.Album, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			return 0, fmt.Errorf("%w: album row needs 3 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad album id %q", util.ErrBadImport, rec[0])
		}
		artistID, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad artist id %q", util.ErrBadImport, rec[2])
		}
		albums = append(albums, &store.Album{AlbumID: id, Title: rec[1], ArtistID: artistID})
		tick(1)
	}

	return len(albums), db.InsertAlbumBatch(albums)
}

func importGenres(db *store.Store, records [][]string, tick func(int)) (int, error) {
	genres := make([]*store.Genre, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			return 0, fmt.Errorf("%w: genre row needs 2 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad genre id %q", util.ErrBadImport, rec[0])
		}
		genres = append(genres, &store.Genre{GenreID: id, Name: rec[1]})
		tick(1)
	}

	return len(genres), db.InsertGenreBatch(genres)
}

func importTracks(db *store.Store, records [][]string, tick func(int)) (int, error) {
	tracks := make([]*store.Track, 0, len(records))
	for _, rec := range records {
		if len(rec) < 7 {
			return 0, fmt.Errorf("%w: track row needs 7 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad track id %q", util.ErrBadImport, rec[0])
		}
		ms, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad milliseconds %q", util.ErrBadImport, rec[5])
		}
		price, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad unit price %q", util.ErrBadImport, rec[6])
		}
		albumID, err := parseNullInt(rec[2])
		if err != nil {
			return 0, fmt.Errorf("track %d album_id: %w", id, err)
		}
		genreID, err := parseNullInt(rec[3])
		if err != nil {
			return 0, fmt.Errorf("track %d genre_id: %w", id, err)
		}

		t := &store.Track{
			TrackID:      id,
			Name:         rec[1],
			AlbumID:      albumID,
			GenreID:      genreID,
			Composer:     parseNullString(rec[4]),
			Milliseconds: ms,
			UnitPrice:    price,
		}
		tracks = append(tracks, t)
		tick(1)
	}

	return len(tracks), db.InsertTrackBatch(tracks)
}

func importEmployees(db *store.Store, records [][]string, tick func(int)) (int, error) {
	employees := make([]*store.Employee, 0, len(records))
	for _, rec := range records {
		if len(rec) < 4 {
			return 0, fmt.Errorf("%w: employee row needs 4 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad employee id %q", util.ErrBadImport, rec[0])
		}
		employees = append(employees, &store.Employee{
			EmployeeID: id,
			LastName:   rec[1],
			FirstName:  rec[2],
			Title:      parseNullString(rec[3]),
		})
		tick(1)
	}

	return len(employees), db.InsertEmployeeBatch(employees)
}

func importCustomers(db *store.Store, records [][]string, tick func(int)) (int, error) {
	customers := make([]*store.Customer, 0, len(records))
	for _, rec := range records {
		if len(rec) < 5 {
			return 0, fmt.Errorf("%w: customer row needs 5 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad customer id %q", util.ErrBadImport, rec[0])
		}
		repID, err := parseNullInt(rec[4])
		if err != nil {
			return 0, fmt.Errorf("customer %d support_rep_id: %w", id, err)
		}
		customers = append(customers, &store.Customer{
			CustomerID:   id,
			FirstName:    rec[1],
			LastName:     rec[2],
			Country:      parseNullString(rec[3]),
			SupportRepID: repID,
		})
		tick(1)
	}

	return len(customers), db.InsertCustomerBatch(customers)
}

func importInvoices(db *store.Store, records [][]string, tick func(int)) (int, error) {
	invoices := make([]*store.Invoice, 0, len(records))
	for _, rec := range records {
		if len(rec) < 4 {
			return 0, fmt.Errorf("%w: invoice row needs 4 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad invoice id %q", util.ErrBadImport, rec[0])
		}
		customerID, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad customer id %q", util.ErrBadImport, rec[1])
		}
		date, err := parseDate(rec[2])
		if err != nil {
			return 0, fmt.Errorf("%w: bad invoice date %q", util.ErrBadImport, rec[2])
		}
		total, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad invoice total %q", util.ErrBadImport, rec[3])
		}
		invoices = append(invoices, &store.Invoice{
			InvoiceID:   id,
			CustomerID:  customerID,
			InvoiceDate: date,
			Total:       total,
		})
		tick(1)
	}

	return len(invoices), db.InsertInvoiceBatch(invoices)
}

func importInvoiceLines(db *store.Store, records [][]string, tick func(int)) (int, error) {
	lines := make([]*store.InvoiceLine, 0, len(records))
	for _, rec := range records {
		if len(rec) < 5 {
			return 0, fmt.Errorf("%w: invoice line row needs 5 fields, got %d", util.ErrBadImport, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad invoice line id %q", util.ErrBadImport, rec[0])
		}
		invoiceID, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad invoice id %q", util.ErrBadImport, rec[1])
		}
		trackID, err := parseNullInt(rec[2])
		if err != nil {
			return 0, fmt.Errorf("invoice line %d track_id: %w", id, err)
		}
		unitPrice, err := parseNullFloat(rec[3])
		if err != nil {
			return 0, fmt.Errorf("invoice line %d unit_price: %w", id, err)
		}
		quantity, err := parseNullInt(rec[4])
		if err != nil {
			return 0, fmt.Errorf("invoice line %d quantity: %w", id, err)
		}
		lines = append(lines, &store.InvoiceLine{
			InvoiceLineID: id,
			InvoiceID:     invoiceID,
			TrackID:       trackID,
			UnitPrice:     unitPrice,
			Quantity:      quantity,
		})
		tick(1)
	}

	return len(lines), db.InsertInvoiceLineBatch(lines)
}

func parseNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{Valid: true, String: s}
}

// Empty optional fields become NULL; non-empty ones must parse, so a
// bad export fails loudly instead of silently degrading to NULL.

func parseNullInt(s string) (sql.NullInt64, error) {
	if strings.TrimSpace(s) == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("%w: bad integer %q", util.ErrBadImport, s)
	}
	return sql.NullInt64{Valid: true, Int64: n}, nil
}

func parseNullFloat(s string) (sql.NullFloat64, error) {
	if strings.TrimSpace(s) == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("%w: bad number %q", util.ErrBadImport, s)
	}
	return sql.NullFloat64{Valid: true, Float64: f}, nil
}

// parseDate accepts the common export formats
func parseDate(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
