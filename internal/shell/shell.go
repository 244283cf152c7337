// Package shell backs the jump/visit integration used by shell hooks.
// Hooks fire on every directory change, so everything here degrades
// silently rather than producing user-visible noise.
package shell

import (
	"time"

	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/paths"
	"projcat/internal/rank"
	"projcat/internal/storage"
)

// Resolver answers fuzzy jump queries against the catalog
type Resolver struct {
	db     *storage.DB
	logger *logging.Logger
}

// New creates a Resolver
func New(db *storage.DB, logger *logging.Logger) *Resolver {
	return &Resolver{db: db, logger: logger}
}

// Resolve returns the best-matching cataloged path for query and records
// a visit for it. The query may be an exact path or a fuzzy string; a
// query matching nothing returns NotFound.
func (r *Resolver) Resolve(query string, now time.Time) (string, error) {
	// An exact cataloged path short-circuits ranking
	if canonical, err := paths.Canonicalize(query); err == nil {
		if rec, err := r.db.GetProject(canonical); err == nil {
			r.recordBestEffort(rec.Path, now)
			return rec.Path, nil
		}
	}

	candidates, err := r.db.AllProjects()
	if err != nil {
		return "", err
	}

	scored := rank.Search(query, candidates, now)
	if len(scored) == 0 {
		return "", cerrors.New(cerrors.NotFound, "no project matches "+query, nil)
	}

	best := scored[0].Record.Path
	r.recordBestEffort(best, now)
	return best, nil
}

// Query returns the top limit matching paths for a fuzzy pattern without
// recording a visit; interactive pickers call this
func (r *Resolver) Query(pattern string, limit int, now time.Time) ([]string, error) {
	candidates, err := r.db.AllProjects()
	if err != nil {
		return nil, err
	}

	scored := rank.Search(pattern, candidates, now)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	matched := make([]string, len(scored))
	for i, s := range scored {
		matched[i] = s.Record.Path
	}
	return matched, nil
}

// RecordVisit records a visit for path. Paths outside the catalog are
// ignored: shell hooks see every directory change and uncataloged
// directories are simply not tracked.
func (r *Resolver) RecordVisit(path string, now time.Time) error {
	canonical, err := paths.Canonicalize(path)
	if err != nil {
		return nil
	}

	err = r.db.RecordVisit(canonical, now)
	if err != nil {
		if cerrors.IsCode(err, cerrors.NotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Resolver) recordBestEffort(path string, now time.Time) {
	if err := r.db.RecordVisit(path, now); err != nil && !cerrors.IsCode(err, cerrors.NotFound) {
		r.logger.Warn("failed to record visit", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
