package backlog

import (
	"os"
	"strings"
	"testing"
)

// --- FileStore ---

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore()

	b := testBacklog(
		testFeature("auth", StatusPending, 5),
		testFeature("api", StatusPending, 3, "auth"),
	)
	b.Features[0].AcceptanceCriteria = []string{"login works", "logout works"}

	if err := fs.Save(dir, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, issues, err := fs.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Load issues = %v, want none", issues)
	}
	if loaded.ProjectName != "test-project" {
		t.Errorf("ProjectName = %q, want test-project", loaded.ProjectName)
	}
	if len(loaded.Features) != 2 {
		t.Fatalf("Features = %d, want 2", len(loaded.Features))
	}
	if len(loaded.Features[0].AcceptanceCriteria) != 2 {
		t.Errorf("AcceptanceCriteria = %v, want 2 entries", loaded.Features[0].AcceptanceCriteria)
	}
	if loaded.UpdatedAt != "2026-08-01T12:00:00Z" {
		t.Errorf("UpdatedAt = %q, want frozen time set on save", loaded.UpdatedAt)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore()

	_, _, err := fs.Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing backlog")
	}
	if !strings.Contains(err.Error(), "backlog_init") {
		t.Errorf("error should point at backlog_init, got: %v", err)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(DataPath(dir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(BacklogPath(dir), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore()
	_, _, err := fs.Load(dir)
	if err == nil {
		t.Fatal("expected error for corrupt backlog file")
	}
}

func TestFileStore_LoadSurfacesValidationIssues(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore()

	b := testBacklog(testFeature("f", StatusPending, 1, "missing-dep"))
	if err := fs.Save(dir, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, issues, err := fs.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want the dangling dep reported", issues)
	}
	// The malformed entry still loads; the scheduler just never picks it.
	if got := NextFeature(loaded); got != nil {
		t.Errorf("NextFeature = %v, want nil", got)
	}
}

func TestFileStore_Exists(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore()

	if fs.Exists(dir) {
		t.Error("Exists should be false before save")
	}
	if err := fs.Save(dir, testBacklog()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !fs.Exists(dir) {
		t.Error("Exists should be true after save")
	}
}
