// Package store provides the SQL-backed data source for the report pipeline.
// It holds the raw sales and customer tables plus the history of report runs.
// The default backend is a local SQLite file; a Dolt repository (versioned
// history of the data) or a MySQL server can be used instead.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/hargabyte/salesreport/internal/config"
)

// doltDatabase is the database name created inside a Dolt repository.
const doltDatabase = "salesreport"

// Store manages a data source connection.
type Store struct {
	db      *sql.DB
	backend string
	dbPath  string
}

// Open opens or creates the store for cfg and initializes the schema if the
// database is new.
func Open(cfg config.StorageConfig) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Backend {
	case config.BackendSQLite, "":
		db, err = openSQLite(cfg.Path)
	case config.BackendDolt:
		db, err = openDolt(cfg.Path)
	case config.BackendMySQL:
		db, err = sql.Open("mysql", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	store := &Store{db: db, backend: cfg.Backend, dbPath: cfg.Path}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	return db, nil
}

func openDolt(path string) (*sql.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	// First, connect without specifying database to create it if needed
	initDSN := fmt.Sprintf("file://%s?commitname=Reportgen&commitemail=reportgen@local", path)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}

	_, err = initDB.Exec("CREATE DATABASE IF NOT EXISTS " + doltDatabase)
	if err != nil {
		initDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	initDB.Close()

	dsn := fmt.Sprintf("file://%s?commitname=Reportgen&commitemail=reportgen@local&database=%s", path, doltDatabase)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backend returns the configured backend name.
func (s *Store) Backend() string {
	return s.backend
}

// Path returns the database file or repository path.
func (s *Store) Path() string {
	return s.dbPath
}
