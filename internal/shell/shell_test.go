package shell

import (
	"path/filepath"
	"testing"
	"time"

	"projcat/internal/catalog"
	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/storage"
)

func setupResolver(t *testing.T) (*Resolver, *storage.DB) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "catalog.db"), logging.Discard())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return New(db, logging.Discard()), db
}

func seed(t *testing.T, db *storage.DB, path string) {
	t.Helper()
	d := catalog.Discovery{
		Path:  path,
		Name:  filepath.Base(path),
		Hints: []string{".git"},
		Kind:  catalog.KindGit,
	}
	if err := db.UpsertProject(d, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestResolveBestMatchRecordsVisit(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/home/dev/webapp")
	seed(t, db, "/home/dev/backend")

	got, err := r.Resolve("webapp", time.Now())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/home/dev/webapp" {
		t.Errorf("Expected /home/dev/webapp, got %s", got)
	}

	rec, err := db.GetProject("/home/dev/webapp")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.VisitCount != 1 {
		t.Errorf("Resolve must record a visit, got %d", rec.VisitCount)
	}
}

func TestResolveNoMatch(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/home/dev/webapp")

	_, err := r.Resolve("zzzzzz", time.Now())
	if !cerrors.IsCode(err, cerrors.NotFound) {
		t.Fatalf("Expected NOT_FOUND, got %v", err)
	}
}

func TestResolvePrefersFrecent(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/work/svc")
	seed(t, db, "/play/svc")

	now := time.Now()
	for i := 0; i < 5; i++ {
		if err := db.RecordVisit("/play/svc", now); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	got, err := r.Resolve("svc", now)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/play/svc" {
		t.Errorf("Expected frecent project to win, got %s", got)
	}
}

func TestQueryReturnsRankedPathsWithoutVisiting(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/home/dev/alpha")
	seed(t, db, "/home/dev/beta")

	got, err := r.Query("dev", 10, time.Now())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 matches, got %v", got)
	}

	for _, p := range got {
		rec, err := db.GetProject(p)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec.VisitCount != 0 {
			t.Errorf("Query must not record visits, %s has %d", p, rec.VisitCount)
		}
	}
}

func TestQueryLimit(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/p/one")
	seed(t, db, "/p/two")
	seed(t, db, "/p/three")

	got, err := r.Query("p", 2, time.Now())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected limit of 2, got %d", len(got))
	}
}

func TestRecordVisitUnknownPathIsNoOp(t *testing.T) {
	r, db := setupResolver(t)
	seed(t, db, "/home/dev/webapp")

	// hooks fire for arbitrary directories; unknown paths must be silent
	if err := r.RecordVisit("/somewhere/else/entirely", time.Now()); err != nil {
		t.Fatalf("Unknown path must be a no-op, got %v", err)
	}

	rec, err := db.GetProject("/home/dev/webapp")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.VisitCount != 0 {
		t.Errorf("No visit should have been recorded, got %d", rec.VisitCount)
	}
}

func TestHookScript(t *testing.T) {
	for _, sh := range []string{"bash", "zsh", "fish"} {
		script, err := HookScript(sh)
		if err != nil {
			t.Fatalf("HookScript(%s) failed: %v", sh, err)
		}
		if script == "" {
			t.Errorf("Empty hook for %s", sh)
		}
	}

	if _, err := HookScript("powershell"); !cerrors.IsCode(err, cerrors.ConfigInvalid) {
		t.Errorf("Expected CONFIG_INVALID for unsupported shell, got %v", err)
	}
}
