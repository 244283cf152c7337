package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/paths"
)

// DB represents a catalog database connection with transaction helpers
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens the catalog database at dbPath, creating the file and schema
// if they do not exist yet
func Open(dbPath string, logger *logging.Logger) (*DB, error) {
	if err := paths.EnsureParentDir(dbPath); err != nil {
		return nil, cerrors.New(cerrors.InternalError, "failed to create catalog directory", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	// Set pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",    // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL",  // Balance between safety and performance
		"PRAGMA foreign_keys=ON",     // Enable foreign key constraints
		"PRAGMA busy_timeout=5000",   // Wait up to 5 seconds on lock
		"PRAGMA cache_size=-16000",   // 16MB cache
		"PRAGMA temp_store=MEMORY",   // Use memory for temp tables
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, classifyOpenError(err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("creating new catalog", map[string]interface{}{
			"path": dbPath,
		})
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			return nil, err
		}
	} else {
		if err := db.runMigrations(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return db, nil
}

// OpenExisting opens the catalog database but refuses to create it, so
// read-oriented commands can tell the user to scan first
func OpenExisting(dbPath string, logger *logging.Logger) (*DB, error) {
	if !fileExists(dbPath) {
		return nil, cerrors.New(cerrors.CatalogMissing,
			fmt.Sprintf("no catalog at %s; run a scan first", paths.Display(dbPath)), nil)
	}
	return Open(dbPath, logger)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the catalog file path
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx executes a function within a transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, the transaction is committed
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return classifyOpenError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classifyOpenError(err)
	}

	return nil
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// classifyOpenError maps driver errors onto the catalog error taxonomy so
// callers can distinguish corruption from lock contention
func classifyOpenError(err error) error {
	if err == nil {
		return nil
	}
	var ce *cerrors.CatalogError
	if errors.As(err, &ce) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY"):
		return cerrors.New(cerrors.CatalogLocked, "catalog is locked by another process", err)
	case strings.Contains(msg, "file is not a database") || strings.Contains(msg, "malformed"):
		return cerrors.New(cerrors.CatalogCorrupt, "catalog file is corrupt; remove it and rescan", err)
	default:
		return cerrors.New(cerrors.InternalError, "catalog operation failed", err)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
