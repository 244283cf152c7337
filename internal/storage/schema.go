package storage

import (
	"database/sql"
	"fmt"

	"projcat/internal/cerrors"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createProjectsTable(tx); err != nil {
			return err
		}
		if err := createScanRunsTable(tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Debug("catalog schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations. A catalog written by a
// newer build is refused rather than guessed at.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version > currentSchemaVersion {
		return cerrors.New(cerrors.SchemaUnsupported,
			fmt.Sprintf("catalog schema version %d is newer than supported version %d; upgrade projcat",
				version, currentSchemaVersion), nil)
	}

	if version == currentSchemaVersion {
		return nil
	}

	if version == 0 {
		// Pre-versioning catalog or empty file: (re)create tables idempotently
		return db.initializeSchema()
	}

	db.logger.Info("migrating catalog schema", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Migrations run sequentially as the schema evolves
	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, classifyOpenError(err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, classifyOpenError(err)
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createProjectsTable creates the projects table keyed by canonical path
func createProjectsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hints TEXT NOT NULL,
			kind TEXT NOT NULL,
			first_seen TEXT NOT NULL,
			last_scanned TEXT NOT NULL,
			visit_count INTEGER NOT NULL DEFAULT 0,
			last_visited TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_projects_last_scanned ON projects(last_scanned)",
		"CREATE INDEX IF NOT EXISTS idx_projects_kind ON projects(kind)",
		"CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createScanRunsTable creates the scan_runs provenance table
func createScanRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS scan_runs (
			run_id TEXT PRIMARY KEY,
			roots TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			discovered_count INTEGER NOT NULL,
			skipped_count INTEGER NOT NULL,
			pruned_count INTEGER NOT NULL,
			dirs_scanned INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scan_runs table: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_scan_runs_started_at ON scan_runs(started_at)")
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
