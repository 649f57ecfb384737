package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hargabyte/salesreport/internal/report"
)

// SalesRecords returns every sales row ordered by date.
func (s *Store) SalesRecords(ctx context.Context) ([]report.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, sales_amount, orders, customers, product_category, region
		FROM sales
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var records []report.RawRecord
	for rows.Next() {
		var (
			r    report.RawRecord
			date string
		)
		if err := rows.Scan(&date, &r.SalesAmount, &r.Orders, &r.Customers, &r.Category, &r.Region); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		r.Date, err = time.Parse(report.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse sales date %q: %w", date, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return records, nil
}

// Customers returns every customer row ordered by id.
func (s *Store) Customers(ctx context.Context) ([]report.CustomerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, age, gender, location, lifetime_value, acquisition_date
		FROM customers
		ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []report.CustomerRecord
	for rows.Next() {
		var (
			c    report.CustomerRecord
			date string
		)
		if err := rows.Scan(&c.CustomerID, &c.Age, &c.Gender, &c.Location, &c.LifetimeValue, &date); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		c.AcquisitionDate, err = time.Parse(report.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse acquisition date %q: %w", date, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

// CountSales returns the number of sales rows.
func (s *Store) CountSales(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// CountCustomers returns the number of customer rows.
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// InsertSales appends records to the sales table in one transaction.
func (s *Store) InsertSales(ctx context.Context, records []report.RawRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertSales(ctx, tx, records)
	})
}

// InsertCustomers appends customers in one transaction.
func (s *Store) InsertCustomers(ctx context.Context, customers []report.CustomerRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertCustomers(ctx, tx, customers)
	})
}

// ClearData removes all sales and customer rows. Run history is kept.
func (s *Store) ClearData(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return clearData(ctx, tx)
	})
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertSales(ctx context.Context, tx *sql.Tx, records []report.RawRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (date, sales_amount, orders, customers, product_category, region)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Date.Format(report.DateLayout), r.SalesAmount.StringFixed(2),
			r.Orders, r.Customers, r.Category, r.Region)
		if err != nil {
			return fmt.Errorf("insert sales row: %w", err)
		}
	}
	return nil
}

func insertCustomers(ctx context.Context, tx *sql.Tx, customers []report.CustomerRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO customers (customer_id, age, gender, location, lifetime_value, acquisition_date)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		_, err := stmt.ExecContext(ctx,
			c.CustomerID, c.Age, c.Gender, c.Location,
			c.LifetimeValue.StringFixed(2), c.AcquisitionDate.Format(report.DateLayout))
		if err != nil {
			return fmt.Errorf("insert customer %s: %w", c.CustomerID, err)
		}
	}
	return nil
}

func clearData(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM sales"); err != nil {
		return fmt.Errorf("clear sales: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM customers"); err != nil {
		return fmt.Errorf("clear customers: %w", err)
	}
	return nil
}
