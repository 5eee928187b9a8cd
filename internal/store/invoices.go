package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Customer represents a row of the customers table
type Customer struct {
	CustomerID   int64
	FirstName    string
	LastName     string
	Country      sql.NullString
	SupportRepID sql.NullInt64
}

// Employee represents a row of the employees table
type Employee struct {
	EmployeeID int64
	LastName   string
	FirstName  string
	Title      sql.NullString
}

// Invoice represents a row of the invoices table
type Invoice struct {
	InvoiceID   int64
	CustomerID  int64
	InvoiceDate time.Time
	Total       float64
}

// InvoiceLine represents a row of the invoice_lines table.
// TrackID, UnitPrice and Quantity are nullable so that the null audits
// see the raw state; estimates that assume values for nulls do so
// explicitly in the report layer.
type InvoiceLine struct {
	InvoiceLineID int64
	InvoiceID     int64
	TrackID       sql.NullInt64
	UnitPrice     sql.NullFloat64
	Quantity      sql.NullInt64
}

// GetAllInvoices returns all invoices ordered by date
func (s *Store) GetAllInvoices() ([]*Invoice, error) {
	rows, err := s.db.Query(`
		SELECT invoice_id, customer_id, invoice_date, total
		FROM invoices
		ORDER BY invoice_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv := &Invoice{}
		if err := rows.Scan(&inv.InvoiceID, &inv.CustomerID, &inv.InvoiceDate, &inv.Total); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// GetAllInvoiceLines returns all invoice lines ordered by id
func (s *Store) GetAllInvoiceLines() ([]*InvoiceLine, error) {
	rows, err := s.db.Query(`
		SELECT invoice_line_id, invoice_id, track_id, unit_price, quantity
		FROM invoice_lines
		ORDER BY invoice_line_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*InvoiceLine
	for rows.Next() {
		l := &InvoiceLine{}
		if err := rows.Scan(&l.InvoiceLineID, &l.InvoiceID, &l.TrackID, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// InsertCustomerBatch inserts customers in a single transaction
func (s *Store) InsertCustomerBatch(customers []*Customer) error {
	if len(customers) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO customers
				(customer_id, first_name, last_name, country, support_rep_id)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range customers {
			_, err := stmt.Exec(c.CustomerID, c.FirstName, c.LastName, c.Country, c.SupportRepID)
			if err != nil {
				return fmt.Errorf("failed to insert customer %d: %w", c.CustomerID, err)
			}
		}

		return nil
	})
}

// InsertEmployeeBatch inserts employees in a single transaction
func (s *Store) InsertEmployeeBatch(employees []*Employee) error {
	if len(employees) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO employees (employee_id, last_name, first_name, title)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range employees {
			_, err := stmt.Exec(e.EmployeeID, e.LastName, e.FirstName, e.Title)
			if err != nil {
				return fmt.Errorf("failed to insert employee %d: %w", e.EmployeeID, err)
			}
		}

		return nil
	})
}

// InsertInvoiceBatch inserts invoices in a single transaction
func (s *Store) InsertInvoiceBatch(invoices []*Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO invoices (invoice_id, customer_id, invoice_date, total)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, inv := range invoices {
			_, err := stmt.Exec(inv.InvoiceID, inv.CustomerID, inv.InvoiceDate, inv.Total)
			if err != nil {
				return fmt.Errorf("failed to insert invoice %d: %w", inv.InvoiceID, err)
			}
		}

		return nil
	})
}

// InsertInvoiceLineBatch inserts invoice lines in a single transaction
func (s *Store) InsertInvoiceLineBatch(lines []*InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO invoice_lines
				(invoice_line_id, invoice_id, track_id, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, l := range lines {
			_, err := stmt.Exec(l.InvoiceLineID, l.InvoiceID, l.TrackID, l.UnitPrice, l.Quantity)
			if err != nil {
				return fmt.Errorf("failed to insert invoice line %d: %w", l.InvoiceLineID, err)
			}
		}

		return nil
	})
}
