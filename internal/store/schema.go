package store

import (
	"fmt"
	"strings"
)

// schemaSQL defines the portable schema shared by every backend.
// Statements are executed one at a time since MySQL rejects multi-statement
// Exec by default.
const schemaSQL = `
-- daily sales observations
CREATE TABLE IF NOT EXISTS sales (
    date VARCHAR(10) NOT NULL,           -- YYYY-MM-DD
    sales_amount DECIMAL(14,2) NOT NULL,
    orders INTEGER NOT NULL,
    customers INTEGER NOT NULL,
    product_category VARCHAR(64) NOT NULL,
    region VARCHAR(64) NOT NULL
);

-- sibling customer dataset
CREATE TABLE IF NOT EXISTS customers (
    customer_id VARCHAR(32) PRIMARY KEY, -- CUST_0001
    age INTEGER NOT NULL,
    gender VARCHAR(8) NOT NULL,
    location VARCHAR(32) NOT NULL,
    lifetime_value DECIMAL(14,2) NOT NULL,
    acquisition_date VARCHAR(10) NOT NULL
);

-- report run history
CREATE TABLE IF NOT EXISTS report_runs (
    id VARCHAR(36) PRIMARY KEY,          -- uuid
    template VARCHAR(64) NOT NULL,
    started_at VARCHAR(40) NOT NULL,
    finished_at VARCHAR(40) NOT NULL,
    status VARCHAR(16) NOT NULL,         -- success, failed
    stage VARCHAR(32),
    error TEXT,
    chart_path TEXT,
    dashboard_path TEXT,
    document_path TEXT,
    notification VARCHAR(16)             -- sent, skipped, failed
)
`

// initSchema creates the tables if they do not exist.
func (s *Store) initSchema() error {
	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// splitStatements splits a script on semicolons, dropping comment-only lines.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
