package storage

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"projcat/internal/cerrors"
)

// Dump writes a gzip-compressed SQL snapshot of the catalog to w: one
// INSERT statement per row, projects first, then scan runs. The snapshot
// is restorable with Restore against any catalog of the same schema
// version.
func (db *DB) Dump(w io.Writer) error {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)

	fmt.Fprintf(bw, "-- projcat catalog dump, schema version %d, %s\n",
		currentSchemaVersion, time.Now().UTC().Format(time.RFC3339))

	if err := db.dumpProjects(bw); err != nil {
		return err
	}
	if err := db.dumpScanRuns(bw); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return cerrors.New(cerrors.InternalError, "failed to write dump", err)
	}
	if err := gz.Close(); err != nil {
		return cerrors.New(cerrors.InternalError, "failed to finish dump", err)
	}
	return nil
}

func (db *DB) dumpProjects(w io.Writer) error {
	rows, err := db.Query(`
		SELECT path, name, hints, kind, first_seen, last_scanned, visit_count, last_visited
		FROM projects ORDER BY path
	`)
	if err != nil {
		return classifyOpenError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, name, hints, kind, firstSeen, lastScanned string
		var visitCount int64
		var lastVisited sql.NullString
		if err := rows.Scan(&path, &name, &hints, &kind, &firstSeen, &lastScanned, &visitCount, &lastVisited); err != nil {
			return classifyOpenError(err)
		}

		fmt.Fprintf(w, "INSERT INTO projects VALUES(%s,%s,%s,%s,%s,%s,%d,%s);\n",
			sqlQuote(path), sqlQuote(name), sqlQuote(hints), sqlQuote(kind),
			sqlQuote(firstSeen), sqlQuote(lastScanned), visitCount, sqlQuoteNull(lastVisited))
	}
	return rows.Err()
}

func (db *DB) dumpScanRuns(w io.Writer) error {
	rows, err := db.Query(`
		SELECT run_id, roots, started_at, finished_at, discovered_count, skipped_count, pruned_count, dirs_scanned
		FROM scan_runs ORDER BY started_at
	`)
	if err != nil {
		return classifyOpenError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var runID, roots, started, finished string
		var discovered, skipped, pruned, dirs int64
		if err := rows.Scan(&runID, &roots, &started, &finished, &discovered, &skipped, &pruned, &dirs); err != nil {
			return classifyOpenError(err)
		}

		fmt.Fprintf(w, "INSERT INTO scan_runs VALUES(%s,%s,%s,%s,%d,%d,%d,%d);\n",
			sqlQuote(runID), sqlQuote(roots), sqlQuote(started), sqlQuote(finished),
			discovered, skipped, pruned, dirs)
	}
	return rows.Err()
}

// Restore replaces the catalog contents with a snapshot previously
// produced by Dump. Existing rows are dropped inside the same
// transaction that applies the snapshot, so a failed restore leaves the
// catalog untouched.
func (db *DB) Restore(r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return cerrors.New(cerrors.CatalogCorrupt, "backup is not a valid gzip stream", err)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var statements []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if !strings.HasPrefix(line, "INSERT INTO projects ") &&
			!strings.HasPrefix(line, "INSERT INTO scan_runs ") {
			return cerrors.New(cerrors.CatalogCorrupt, "backup contains an unexpected statement", nil)
		}
		statements = append(statements, line)
	}
	if err := scanner.Err(); err != nil {
		return cerrors.New(cerrors.CatalogCorrupt, "failed to read backup", err)
	}

	err = db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM projects"); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM scan_runs"); err != nil {
			return err
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return classifyOpenError(err)
	}

	db.logger.Info("catalog restored", map[string]interface{}{
		"statements": len(statements),
	})
	return nil
}

func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlQuoteNull(s sql.NullString) string {
	if !s.Valid {
		return "NULL"
	}
	return sqlQuote(s.String)
}
