package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"projcat/internal/catalog"
	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/paths"
	"projcat/internal/rules"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func testRules(t *testing.T, indicators, exclusions []string, maxDepth int) *rules.Config {
	t.Helper()
	cfg, err := rules.NewConfig(indicators, exclusions, maxDepth)
	if err != nil {
		t.Fatalf("Failed to build rules: %v", err)
	}
	return cfg
}

// collectScan runs a scan and returns discovered paths relative to root
func collectScan(t *testing.T, cfg *rules.Config, root string) ([]string, catalog.ScanRun) {
	t.Helper()

	var found []string
	sink := func(d catalog.Discovery, now time.Time) error {
		found = append(found, d.Path)
		return nil
	}

	run, err := New(cfg, logging.Discard()).Scan(context.Background(), []string{root}, sink)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	canonicalRoot, err := paths.Canonicalize(root)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	rel := make([]string, len(found))
	for i, p := range found {
		r, err := filepath.Rel(canonicalRoot, p)
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		rel[i] = r
	}
	sort.Strings(rel)
	return rel, run
}

func TestScanEndToEnd(t *testing.T) {
	work := t.TempDir()
	mkdirAll(t, filepath.Join(work, "app"))
	touch(t, filepath.Join(work, "app", "package.json"))
	mkdirAll(t, filepath.Join(work, "app", "node_modules", "lib"))
	touch(t, filepath.Join(work, "app", "node_modules", "lib", "package.json"))
	mkdirAll(t, filepath.Join(work, ".git"))

	cfg := testRules(t, []string{"package.json", ".git"}, []string{"node_modules"}, 10)

	found, run := collectScan(t, cfg, work)
	want := []string{".", "app"}
	if len(found) != 2 || found[0] != want[0] || found[1] != want[1] {
		t.Fatalf("Expected %v, got %v", want, found)
	}

	if run.DiscoveredCount != 2 {
		t.Errorf("Expected 2 discoveries in summary, got %d", run.DiscoveredCount)
	}
	if run.RunID == "" {
		t.Errorf("Expected a run id")
	}
	if run.DirsScanned == 0 {
		t.Errorf("Expected dirs scanned > 0")
	}
	if !run.FinishedAt.After(run.StartedAt) && !run.FinishedAt.Equal(run.StartedAt) {
		t.Errorf("Run timestamps out of order: %v .. %v", run.StartedAt, run.FinishedAt)
	}
}

func TestCanaryInExcludedSubtreeNeverAppears(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "target", "canary"))
	touch(t, filepath.Join(root, "target", "canary", "Cargo.toml"))
	touch(t, filepath.Join(root, "Cargo.toml"))

	cfg := testRules(t, []string{"Cargo.toml"}, []string{"target"}, 10)

	found, _ := collectScan(t, cfg, root)
	if len(found) != 1 || found[0] != "." {
		t.Fatalf("Canary inside excluded directory must not be found, got %v", found)
	}
}

func TestPrunesCountedSeparatelyFromSkips(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "go.mod"))
	mkdirAll(t, filepath.Join(root, "node_modules"))
	mkdirAll(t, filepath.Join(root, ".cache"))

	cfg := testRules(t, []string{"go.mod"}, []string{"node_modules"}, 10)

	_, run := collectScan(t, cfg, root)
	// one excluded dir plus one hidden dir are pruned; with every
	// directory readable, no skips are recorded
	if run.PrunedCount != 2 {
		t.Errorf("Expected 2 pruned directories, got %d", run.PrunedCount)
	}
	if run.SkippedCount != 0 {
		t.Errorf("Prunes must not count as skips, got %d", run.SkippedCount)
	}
}

func TestMaxDepthBoundsDiscovery(t *testing.T) {
	root := t.TempDir()
	// project two levels below the root
	mkdirAll(t, filepath.Join(root, "a", "b"))
	touch(t, filepath.Join(root, "a", "b", "go.mod"))

	shallow := testRules(t, []string{"go.mod"}, nil, 1)
	found, _ := collectScan(t, shallow, root)
	if len(found) != 0 {
		t.Fatalf("max_depth=1 must not reach depth 2, got %v", found)
	}

	deep := testRules(t, []string{"go.mod"}, nil, 2)
	found, _ = collectScan(t, deep, root)
	if len(found) != 1 || found[0] != filepath.Join("a", "b") {
		t.Fatalf("max_depth=2 must reach depth 2, got %v", found)
	}
}

func TestNestedProjectsBothCataloged(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "go.mod"))
	mkdirAll(t, filepath.Join(root, "tools", "gen"))
	touch(t, filepath.Join(root, "tools", "gen", "go.mod"))

	cfg := testRules(t, []string{"go.mod"}, nil, 10)

	found, _ := collectScan(t, cfg, root)
	if len(found) != 2 {
		t.Fatalf("Monorepo sub-project must also be cataloged, got %v", found)
	}
}

func TestHiddenDirectoriesSkipped(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, ".config"))
	touch(t, filepath.Join(root, ".config", "package.json"))

	cfg := testRules(t, []string{"package.json"}, nil, 10)

	found, _ := collectScan(t, cfg, root)
	if len(found) != 0 {
		t.Fatalf("Projects under hidden directories must be skipped, got %v", found)
	}
}

func TestRescanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "pyproject.toml"))
	mkdirAll(t, filepath.Join(root, "sub"))
	touch(t, filepath.Join(root, "sub", "pyproject.toml"))

	cfg := testRules(t, []string{"pyproject.toml"}, nil, 10)

	first, _ := collectScan(t, cfg, root)
	second, _ := collectScan(t, cfg, root)
	if len(first) != len(second) {
		t.Fatalf("Rescan changed result: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Rescan changed result: %v vs %v", first, second)
		}
	}
}

func TestDiscoveryCarriesHintsAndKind(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, ".git"))
	touch(t, filepath.Join(root, "Cargo.toml"))

	cfg := testRules(t, []string{".git", "Cargo.toml"}, nil, 10)

	var got catalog.Discovery
	sink := func(d catalog.Discovery, now time.Time) error {
		got = d
		return nil
	}
	if _, err := New(cfg, logging.Discard()).Scan(context.Background(), []string{root}, sink); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(got.Hints) != 2 {
		t.Errorf("Expected both hints, got %v", got.Hints)
	}
	if got.Kind != catalog.KindRust {
		t.Errorf("Cargo.toml must classify as rust, got %s", got.Kind)
	}
	if got.Name != filepath.Base(got.Path) {
		t.Errorf("Name must be the directory base name, got %s", got.Name)
	}
}

func TestValidateRootsRejectsMissing(t *testing.T) {
	_, err := ValidateRoots([]string{filepath.Join(t.TempDir(), "missing")})
	if !cerrors.IsCode(err, cerrors.RootInvalid) {
		t.Fatalf("Expected ROOT_INVALID, got %v", err)
	}
}

func TestValidateRootsRejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	touch(t, file)

	_, err := ValidateRoots([]string{file})
	if !cerrors.IsCode(err, cerrors.RootInvalid) {
		t.Fatalf("Expected ROOT_INVALID, got %v", err)
	}
}

func TestValidateRootsRejectsEmpty(t *testing.T) {
	_, err := ValidateRoots(nil)
	if !cerrors.IsCode(err, cerrors.RootInvalid) {
		t.Fatalf("Expected ROOT_INVALID, got %v", err)
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "go.mod"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testRules(t, []string{"go.mod"}, nil, 10)
	sink := func(d catalog.Discovery, now time.Time) error { return nil }

	run, err := New(cfg, logging.Discard()).Scan(ctx, []string{root}, sink)
	if err != nil {
		t.Fatalf("Cancelled scan must not error: %v", err)
	}
	// a pre-cancelled context yields an empty but well-formed summary
	if run.RunID == "" {
		t.Errorf("Expected a run id even when cancelled")
	}
}

func TestSinkErrorAbortsScan(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "go.mod"))
	mkdirAll(t, filepath.Join(root, "sub"))
	touch(t, filepath.Join(root, "sub", "go.mod"))

	cfg := testRules(t, []string{"go.mod"}, nil, 10)
	sinkErr := cerrors.New(cerrors.CatalogLocked, "catalog is locked by another process", nil)
	sink := func(d catalog.Discovery, now time.Time) error { return sinkErr }

	_, err := New(cfg, logging.Discard()).Scan(context.Background(), []string{root}, sink)
	if !cerrors.IsCode(err, cerrors.CatalogLocked) {
		t.Fatalf("Expected sink error to surface, got %v", err)
	}
}
