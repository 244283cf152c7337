// Package scanner walks directory trees looking for project roots. Each
// scan root gets its own worker; discoveries funnel through one collector
// goroutine so the catalog sees a single writer.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"projcat/internal/catalog"
	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/paths"
	"projcat/internal/rules"
)

// Sink receives each discovery as it is found. It is invoked from a single
// goroutine, so implementations need no locking of their own.
type Sink func(d catalog.Discovery, now time.Time) error

// Scanner discovers project roots under configured rule sets
type Scanner struct {
	rules  *rules.Config
	logger *logging.Logger
}

// New creates a Scanner
func New(cfg *rules.Config, logger *logging.Logger) *Scanner {
	return &Scanner{rules: cfg, logger: logger}
}

// ValidateRoots canonicalizes scan roots and rejects any that do not
// exist or are not directories. Validation happens before any traversal
// so a typoed root fails the whole invocation up front.
func ValidateRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		return nil, cerrors.New(cerrors.RootInvalid, "no scan roots given", nil)
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := paths.Canonicalize(root)
		if err != nil {
			return nil, cerrors.New(cerrors.RootInvalid, fmt.Sprintf("invalid scan root %s", root), err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, cerrors.New(cerrors.RootInvalid, fmt.Sprintf("scan root does not exist: %s", root), err)
		}
		if !info.IsDir() {
			return nil, cerrors.New(cerrors.RootInvalid, fmt.Sprintf("scan root is not a directory: %s", root), nil)
		}
		canonical = append(canonical, abs)
	}
	return canonical, nil
}

// Scan traverses every root and forwards discoveries to sink. Cancelling
// ctx stops the traversal promptly; whatever was discovered before the
// cancellation stays delivered, and the returned summary covers only the
// work actually done.
func (s *Scanner) Scan(ctx context.Context, roots []string, sink Sink) (catalog.ScanRun, error) {
	run := catalog.ScanRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	canonical, err := ValidateRoots(roots)
	if err != nil {
		return run, err
	}
	run.Roots = canonical

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var dirsScanned, skipped, pruned atomic.Int64
	discoveries := make(chan catalog.Discovery, 64)

	var wg sync.WaitGroup
	for _, root := range canonical {
		wg.Add(1)
		go func(root string) {
			defer wg.Done()
			s.walk(ctx, root, discoveries, &dirsScanned, &skipped, &pruned)
		}(root)
	}

	go func() {
		wg.Wait()
		close(discoveries)
	}()

	var discovered int64
	var sinkErr error
	for d := range discoveries {
		if sinkErr != nil {
			continue // drain so workers can exit
		}
		if err := sink(d, time.Now().UTC()); err != nil {
			sinkErr = err
			cancel()
			continue
		}
		discovered++
	}

	run.FinishedAt = time.Now().UTC()
	run.DiscoveredCount = discovered
	run.SkippedCount = skipped.Load()
	run.PrunedCount = pruned.Load()
	run.DirsScanned = dirsScanned.Load()

	if sinkErr != nil {
		return run, sinkErr
	}
	if ctx.Err() != nil {
		s.logger.Warn("scan cancelled", map[string]interface{}{
			"run_id":     run.RunID,
			"discovered": discovered,
		})
	}
	return run, nil
}

type frame struct {
	path  string
	depth int
}

// walk performs an iterative depth-first traversal of one root. Depth 0 is
// the root itself; children of a directory at MaxDepth are never pushed.
// Excluded and hidden directories are pruned by name before being opened
// and counted separately from skips, which record traversal errors only.
func (s *Scanner) walk(ctx context.Context, root string, out chan<- catalog.Discovery, dirsScanned, skipped, pruned *atomic.Int64) {
	if s.rules.Classify(filepath.Base(root), nil, nil).Kind == rules.Excluded {
		pruned.Add(1)
		return
	}

	stack := []frame{{path: root, depth: 0}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(f.path)
		if err != nil {
			skipped.Add(1)
			s.logger.Warn("skipping unreadable directory", map[string]interface{}{
				"path":  f.path,
				"error": err.Error(),
			})
			continue
		}
		dirsScanned.Add(1)

		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}

		decision := s.rules.Classify(filepath.Base(f.path), names, nil)
		if decision.Kind == rules.Project {
			d := catalog.Discovery{
				Path:  f.path,
				Name:  filepath.Base(f.path),
				Hints: decision.Hints,
				Kind:  catalog.DeriveKind(decision.Hints),
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}

		if f.depth >= s.rules.MaxDepth {
			continue
		}

		for _, e := range entries {
			// symlinked directories are not followed; depth alone bounds the walk
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if s.excludedName(name) {
				pruned.Add(1)
				continue
			}
			if strings.HasPrefix(name, ".") && !s.rules.IsIndicatorName(name) {
				pruned.Add(1)
				continue
			}
			stack = append(stack, frame{path: filepath.Join(f.path, name), depth: f.depth + 1})
		}
	}
}

func (s *Scanner) excludedName(name string) bool {
	return s.rules.Classify(name, nil, nil).Kind == rules.Excluded
}
