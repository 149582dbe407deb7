package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
}

// --- Helpers ---

func testTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	dir := t.TempDir()
	tr := New(dir, 0, 0)
	if err := tr.Initialize("test-project"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return tr, dir
}

func countEntries(s string) int {
	// One session_id line per entry block.
	return strings.Count(s, labelSessionID)
}

// --- New ---

func TestNew_DefaultsOnNonPositive(t *testing.T) {
	tr := New("/tmp/x", 0, -3)
	if tr.rotationThresholdKB != DefaultRotationThresholdKB {
		t.Errorf("rotationThresholdKB = %d, want default %d", tr.rotationThresholdKB, DefaultRotationThresholdKB)
	}
	if tr.keepEntries != DefaultKeepEntries {
		t.Errorf("keepEntries = %d, want default %d", tr.keepEntries, DefaultKeepEntries)
	}
}

// --- Initialize ---

func TestInitialize_WritesHeader(t *testing.T) {
	tr, _ := testTracker(t)

	content, err := tr.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(content, "test-project") {
		t.Errorf("header should name the project, got: %q", content)
	}
	if !strings.Contains(content, "created: 2026-08-01T12:00:00Z") {
		t.Errorf("header should carry the creation time, got: %q", content)
	}
}

func TestInitialize_IdempotentPreservesContent(t *testing.T) {
	tr, _ := testTracker(t)
	if err := tr.Append(Entry{SessionID: "s1", Action: "note", Summary: "before"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	before, _ := tr.Read()

	// Second init with a different name must not touch the file.
	if err := tr.Initialize("some-other-name"); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	after, _ := tr.Read()
	if after != before {
		t.Error("Initialize on existing log should preserve content byte-for-byte")
	}
	if strings.Contains(after, "some-other-name") {
		t.Error("second Initialize must not rewrite the header")
	}
}

// --- Append / Read ---

func TestAppend_WritesStructuredBlock(t *testing.T) {
	tr, _ := testTracker(t)

	err := tr.Append(Entry{
		SessionID: "sess-1",
		FeatureID: "auth",
		Action:    "session_started",
		Summary:   "picked up auth work",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	content, err := tr.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, want := range []string{
		"## 2026-08-01T12:00:00Z",
		"action: session_started",
		"session_id: sess-1",
		"feature_id: auth",
		"summary: picked up auth work",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestAppend_OmitsEmptyFeatureID(t *testing.T) {
	tr, _ := testTracker(t)

	if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: "free-form"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	content, _ := tr.Read()
	if strings.Contains(content, labelFeatureID) {
		t.Error("entry without feature should omit the feature_id line")
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	tr, _ := testTracker(t)

	for i := 0; i < 3; i++ {
		if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: fmt.Sprintf("step-%d", i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	content, _ := tr.Read()
	i0 := strings.Index(content, "step-0")
	i1 := strings.Index(content, "step-1")
	i2 := strings.Index(content, "step-2")
	if i0 < 0 || i1 < 0 || i2 < 0 || !(i0 < i1 && i1 < i2) {
		t.Errorf("entries out of append order: %d, %d, %d", i0, i1, i2)
	}
}

// --- ReadRecent ---

func TestReadRecent_ShortLogReturnedWhole(t *testing.T) {
	tr, _ := testTracker(t)
	if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: "only one"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := tr.ReadRecent(500)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if strings.Contains(got, TruncationMarker) {
		t.Error("short log should not carry the truncation marker")
	}
	full, _ := tr.Read()
	if got != full {
		t.Error("ReadRecent on a short log should return the full content")
	}
}

func TestReadRecent_TruncatesWithMarker(t *testing.T) {
	tr, _ := testTracker(t)
	for i := 0; i < 20; i++ {
		if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: fmt.Sprintf("e-%02d", i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := tr.ReadRecent(10)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if !strings.HasPrefix(got, TruncationMarker) {
		t.Errorf("truncated output should start with the marker, got: %q", got[:50])
	}
	if !strings.Contains(got, "e-19") {
		t.Error("most recent entry should survive truncation")
	}
	if strings.Contains(got, "e-00") {
		t.Error("oldest entry should be dropped by truncation")
	}
}

// --- Rotation ---

func TestRotate_MovesOldEntriesToArchive(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, 1, 5) // rotate past 1KB, keep 5 entries
	if err := tr.Initialize("rotation-test"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	padding := strings.Repeat("x", 100)
	for i := 0; i < 50; i++ {
		err := tr.Append(Entry{
			SessionID: "s",
			Action:    "note",
			Summary:   fmt.Sprintf("entry-%02d %s", i, padding),
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	live, err := tr.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !strings.Contains(live, "rotated:") || !strings.Contains(live, "archived to:") {
		t.Error("live log should carry a rotation marker naming the archive")
	}
	if !strings.Contains(live, "entry-49") {
		t.Error("most recent entry must stay in the live log")
	}
	if strings.Contains(live, "entry-00") {
		t.Error("oldest entry should have been rotated out")
	}
	if !strings.Contains(live, "# Progress Log — rotation-test") {
		t.Error("rotation must preserve the log header")
	}

	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) == 0 {
		t.Fatal("expected at least one archive file")
	}

	// Conservation: every appended entry exists exactly once across the
	// live file and all archives.
	total := countEntries(live)
	firstArchived := false
	for _, path := range archives {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading archive %s: %v", path, err)
		}
		total += countEntries(string(data))
		if strings.Contains(string(data), "entry-00") {
			firstArchived = true
		}
	}
	if total != 50 {
		t.Errorf("entries across live+archives = %d, want 50 (none lost, none duplicated)", total)
	}
	if !firstArchived {
		t.Error("oldest entry should be present in an archive")
	}
}

func TestRotate_MarkdownSummariesStayWhole(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, 1, 2)
	if err := tr.Initialize("markdown-summaries"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Summaries carrying markdown headings must not create false entry
	// boundaries when rotation partitions the log.
	padding := strings.Repeat("x", 120)
	for i := 0; i < 12; i++ {
		err := tr.Append(Entry{
			SessionID: "s",
			Action:    "note",
			Summary:   fmt.Sprintf("notes %02d follow\n## Decision\nuse sqlite %s", i, padding),
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	live, err := tr.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) == 0 {
		t.Fatal("expected at least one archive file")
	}

	total := countEntries(live)
	contents := []string{live}
	for _, path := range archives {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading archive %s: %v", path, err)
		}
		total += countEntries(string(data))
		contents = append(contents, string(data))
	}
	if total != 12 {
		t.Errorf("entries across live+archives = %d, want 12 (none split, none duplicated)", total)
	}
	for _, c := range contents {
		// Every heading inside a summary stays attached to its entry: the
		// "use sqlite" line follows it in the same file, never orphaned.
		if strings.Count(c, "## Decision") != strings.Count(c, "use sqlite") {
			t.Error("summary heading separated from its entry by rotation")
		}
		if strings.Contains(c, "\n## Decision") {
			t.Error("summary heading should be indented, not at column zero")
		}
	}
}

func TestRotate_NoRotationBelowThreshold(t *testing.T) {
	tr, _ := testTracker(t) // default 50KB threshold
	for i := 0; i < 10; i++ {
		if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: "small"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) != 0 {
		t.Errorf("archives = %v, want none below threshold", archives)
	}
	live, _ := tr.Read()
	if strings.Contains(live, "rotated:") {
		t.Error("no rotation marker expected below threshold")
	}
}

func TestRotate_FewEntriesOverThresholdIsNoOp(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, 1, 100) // keep far exceeds entry count
	if err := tr.Initialize("big-entries"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Two entries, each larger than the whole threshold.
	big := strings.Repeat("y", 1500)
	for i := 0; i < 2; i++ {
		if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: big}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	archives, _ := tr.ArchiveFiles()
	if len(archives) != 0 {
		t.Errorf("archives = %v, want none when all entries are retained", archives)
	}
	live, _ := tr.Read()
	if countEntries(live) != 2 {
		t.Errorf("live entries = %d, want 2 (nothing moved)", countEntries(live))
	}
}

func TestRotate_ArchiveNamesUniqueWithinSameSecond(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, 1, 2)
	if err := tr.Initialize("collisions"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Frozen clock: every rotation happens "at the same second", forcing
	// the collision-suffix path.
	padding := strings.Repeat("z", 200)
	for i := 0; i < 30; i++ {
		if err := tr.Append(Entry{SessionID: "s", Action: "note", Summary: padding}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) < 2 {
		t.Fatalf("expected multiple archives, got %d", len(archives))
	}
	seen := make(map[string]bool)
	for _, a := range archives {
		name := filepath.Base(a)
		if seen[name] {
			t.Errorf("duplicate archive name %q", name)
		}
		seen[name] = true
	}
}

// --- ArchiveFiles ---

func TestArchiveFiles_EmptyWhenNoArchive(t *testing.T) {
	tr, _ := testTracker(t)
	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) != 0 {
		t.Errorf("archives = %v, want empty", archives)
	}
}

func TestArchiveFiles_CreationOrder(t *testing.T) {
	tr, _ := testTracker(t)
	if err := os.MkdirAll(tr.archivePath(), 0o755); err != nil {
		t.Fatal(err)
	}

	// Lexically reversed names with explicit mtimes: creation order must
	// follow mtime, not the filename.
	older := filepath.Join(tr.archivePath(), "progress-b.log")
	newer := filepath.Join(tr.archivePath(), "progress-a.log")
	for _, p := range []string{older, newer} {
		if err := os.WriteFile(p, []byte("## x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(older, base, base); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(newer, base.Add(time.Hour), base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	archives, err := tr.ArchiveFiles()
	if err != nil {
		t.Fatalf("ArchiveFiles: %v", err)
	}
	if len(archives) != 2 || archives[0] != older || archives[1] != newer {
		t.Errorf("archives = %v, want [%s %s]", archives, older, newer)
	}
}
