package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"projcat/internal/catalog"
	"projcat/internal/cerrors"
)

// Fixed-width fraction keeps stored UTC strings lexicographically
// time-ordered, which last_scanned comparisons and ORDER BY rely on
// (RFC3339Nano trims trailing zeros and breaks that at sub-second
// granularity).
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// UpsertProject records a discovery. New paths are inserted with zero
// visits; existing paths keep their first_seen and visit history and only
// refresh hints, kind, and last_scanned.
func (db *DB) UpsertProject(d catalog.Discovery, now time.Time) error {
	hintsJSON, err := json.Marshal(d.Hints)
	if err != nil {
		return cerrors.New(cerrors.InternalError, "failed to encode hints", err)
	}

	nowStr := now.UTC().Format(timeFormat)
	_, err = db.Exec(`
		INSERT INTO projects (path, name, hints, kind, first_seen, last_scanned, visit_count, last_visited)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			hints = excluded.hints,
			kind = excluded.kind,
			last_scanned = excluded.last_scanned
	`, d.Path, d.Name, string(hintsJSON), string(d.Kind), nowStr, nowStr)
	if err != nil {
		return classifyOpenError(err)
	}
	return nil
}

// GetProject fetches one record by canonical path
func (db *DB) GetProject(path string) (*catalog.ProjectRecord, error) {
	row := db.QueryRow(`
		SELECT path, name, hints, kind, first_seen, last_scanned, visit_count, last_visited
		FROM projects WHERE path = ?
	`, path)

	rec, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, cerrors.New(cerrors.NotFound, fmt.Sprintf("path not cataloged: %s", path), nil)
	}
	if err != nil {
		return nil, classifyOpenError(err)
	}
	return rec, nil
}

// ListOptions filters and bounds a listing
type ListOptions struct {
	Substring string       // matched against path and name, empty matches all
	Kind      catalog.Kind // empty matches all kinds
	Limit     int          // 0 means unlimited
}

// ListProjects returns records ordered by last_scanned descending
func (db *DB) ListProjects(opts ListOptions) ([]catalog.ProjectRecord, error) {
	query := `
		SELECT path, name, hints, kind, first_seen, last_scanned, visit_count, last_visited
		FROM projects WHERE 1=1`
	var args []interface{}

	if opts.Substring != "" {
		query += ` AND (path LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\')`
		like := "%" + escapeLike(opts.Substring) + "%"
		args = append(args, like, like)
	}
	if opts.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(opts.Kind))
	}
	query += " ORDER BY last_scanned DESC, path ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

// escapeLike neutralizes LIKE metacharacters so a substring filter
// matches them literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// AllProjects returns every record; the ranking engine filters in memory
func (db *DB) AllProjects() ([]catalog.ProjectRecord, error) {
	return db.ListProjects(ListOptions{})
}

// RecordVisit increments the visit counter and stamps last_visited.
// Returns NotFound for paths outside the catalog.
func (db *DB) RecordVisit(path string, now time.Time) error {
	res, err := db.Exec(`
		UPDATE projects
		SET visit_count = visit_count + 1, last_visited = ?
		WHERE path = ?
	`, now.UTC().Format(timeFormat), path)
	if err != nil {
		return classifyOpenError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classifyOpenError(err)
	}
	if affected == 0 {
		return cerrors.New(cerrors.NotFound, fmt.Sprintf("path not cataloged: %s", path), nil)
	}
	return nil
}

// Prune removes records whose last_scanned predates cutoff. With dryRun
// it only reports what would be removed.
func (db *DB) Prune(cutoff time.Time, dryRun bool) ([]string, error) {
	cutoffStr := cutoff.UTC().Format(timeFormat)

	rows, err := db.Query("SELECT path FROM projects WHERE last_scanned < ? ORDER BY path", cutoffStr)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, classifyOpenError(err)
		}
		stale = append(stale, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyOpenError(err)
	}

	if dryRun || len(stale) == 0 {
		return stale, nil
	}

	if _, err := db.Exec("DELETE FROM projects WHERE last_scanned < ?", cutoffStr); err != nil {
		return nil, classifyOpenError(err)
	}

	db.logger.Info("pruned stale projects", map[string]interface{}{
		"removed": len(stale),
		"cutoff":  cutoffStr,
	})
	return stale, nil
}

// Stats aggregates catalog-wide counts and the on-disk size
func (db *DB) Stats() (*catalog.Stats, int64, error) {
	stats := &catalog.Stats{ByKind: make(map[catalog.Kind]int64)}

	rows, err := db.Query("SELECT kind, COUNT(*) FROM projects GROUP BY kind")
	if err != nil {
		return nil, 0, classifyOpenError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, 0, classifyOpenError(err)
		}
		stats.ByKind[catalog.Kind(kind)] = count
		stats.TotalProjects += count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classifyOpenError(err)
	}

	err = db.QueryRow("SELECT COALESCE(SUM(visit_count), 0) FROM projects").Scan(&stats.TotalVisits)
	if err != nil {
		return nil, 0, classifyOpenError(err)
	}

	var lastScan sql.NullString
	err = db.QueryRow("SELECT MAX(finished_at) FROM scan_runs").Scan(&lastScan)
	if err != nil && err != sql.ErrNoRows {
		return nil, 0, classifyOpenError(err)
	}
	if lastScan.Valid {
		if t, perr := time.Parse(timeFormat, lastScan.String); perr == nil {
			stats.LastScan = &t
		}
	}

	var size int64
	if info, serr := os.Stat(db.dbPath); serr == nil {
		size = info.Size()
	}

	return stats, size, nil
}

// InsertRun persists a scan-run provenance record
func (db *DB) InsertRun(run catalog.ScanRun) error {
	rootsJSON, err := json.Marshal(run.Roots)
	if err != nil {
		return cerrors.New(cerrors.InternalError, "failed to encode roots", err)
	}

	_, err = db.Exec(`
		INSERT INTO scan_runs (run_id, roots, started_at, finished_at, discovered_count, skipped_count, pruned_count, dirs_scanned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, string(rootsJSON),
		run.StartedAt.UTC().Format(timeFormat),
		run.FinishedAt.UTC().Format(timeFormat),
		run.DiscoveredCount, run.SkippedCount, run.PrunedCount, run.DirsScanned)
	if err != nil {
		return classifyOpenError(err)
	}
	return nil
}

// RecentRuns returns the newest scan runs, most recent first
func (db *DB) RecentRuns(limit int) ([]catalog.ScanRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT run_id, roots, started_at, finished_at, discovered_count, skipped_count, pruned_count, dirs_scanned
		FROM scan_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer rows.Close()

	var runs []catalog.ScanRun
	for rows.Next() {
		var run catalog.ScanRun
		var rootsJSON, started, finished string
		if err := rows.Scan(&run.RunID, &rootsJSON, &started, &finished,
			&run.DiscoveredCount, &run.SkippedCount, &run.PrunedCount, &run.DirsScanned); err != nil {
			return nil, classifyOpenError(err)
		}
		if err := json.Unmarshal([]byte(rootsJSON), &run.Roots); err != nil {
			return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to decode scan run roots", err)
		}
		if run.StartedAt, err = time.Parse(timeFormat, started); err != nil {
			return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to parse scan run timestamp", err)
		}
		if run.FinishedAt, err = time.Parse(timeFormat, finished); err != nil {
			return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to parse scan run timestamp", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*catalog.ProjectRecord, error) {
	var rec catalog.ProjectRecord
	var hintsJSON, kind, firstSeen, lastScanned string
	var lastVisited sql.NullString

	err := row.Scan(&rec.Path, &rec.Name, &hintsJSON, &kind,
		&firstSeen, &lastScanned, &rec.VisitCount, &lastVisited)
	if err != nil {
		return nil, err
	}

	rec.Kind = catalog.Kind(kind)
	if err := json.Unmarshal([]byte(hintsJSON), &rec.Hints); err != nil {
		return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to decode hints", err)
	}
	if rec.FirstSeen, err = time.Parse(timeFormat, firstSeen); err != nil {
		return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to parse first_seen", err)
	}
	if rec.LastScanned, err = time.Parse(timeFormat, lastScanned); err != nil {
		return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to parse last_scanned", err)
	}
	if lastVisited.Valid {
		t, err := time.Parse(timeFormat, lastVisited.String)
		if err != nil {
			return nil, cerrors.New(cerrors.CatalogCorrupt, "failed to parse last_visited", err)
		}
		rec.LastVisited = &t
	}

	return &rec, nil
}

func collectProjects(rows *sql.Rows) ([]catalog.ProjectRecord, error) {
	var records []catalog.ProjectRecord
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, classifyOpenError(err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
