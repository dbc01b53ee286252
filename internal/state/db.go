// Package state provides optional SQLite persistence for codi reports and
// audit records. The default database lives in $XDG_DATA_HOME/codi/codi.db.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the pure-Go driver from modernc.org/sqlite.
	DriverSQLite = "sqlite"
	// DriverSQLite3 is the cgo driver from github.com/mattn/go-sqlite3.
	DriverSQLite3 = "sqlite3"
)

// DB wraps an SQLite database connection with codi-specific operations.
type DB struct {
	conn   *sql.DB
	path   string
	driver string
	mu     sync.RWMutex
}

// DefaultPath returns the path to the default codi database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "codi", "codi.db")
}

// Open opens an SQLite database at path with the pure-Go driver.
func Open(path string) (*DB, error) {
	return OpenWithDriver(DriverSQLite, path)
}

// OpenWithDriver opens an SQLite database at the given path using driver.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func OpenWithDriver(driver, path string) (*DB, error) {
	switch driver {
	case "":
		driver = DriverSQLite
	case DriverSQLite, DriverSQLite3:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{conn: conn, path: path, driver: driver}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Driver returns the database/sql driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Reports},
		{2, migrationV2Audit},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		err := db.inTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.sql); err != nil {
				return fmt.Errorf("apply migration v%d: %w", m.version, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
				return fmt.Errorf("record migration v%d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

const migrationV1Reports = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	objective TEXT NOT NULL,
	status TEXT NOT NULL,
	engine TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	completed_at DATETIME NOT NULL,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
`

const migrationV2Audit = `
CREATE TABLE IF NOT EXISTS audit_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	execution_id TEXT NOT NULL,
	goal TEXT NOT NULL,
	steps TEXT NOT NULL,
	warnings TEXT NOT NULL,
	errors TEXT NOT NULL,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_execution_id ON audit_records(execution_id);
`

// Exec executes a query that doesn't return rows.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Exec(query, args...)
}

// inTx runs fn within a transaction. The caller holds db.mu.
func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// PurgeOldReports deletes reports completed before the cutoff.
// Returns the number of reports deleted.
func (db *DB) PurgeOldReports(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM reports WHERE completed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old reports: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return count, nil
}
