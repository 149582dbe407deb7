package progress

import (
	"strings"
	"testing"

	"github.com/DilaraHst/ratchet/internal/backlog"
)

// --- LogSessionStart ---

func TestLogSessionStart_RecordsFeatureAndCriteria(t *testing.T) {
	tr, _ := testTracker(t)

	f := &backlog.Feature{
		ID:                 "auth",
		Name:               "User authentication",
		Priority:           8,
		SessionsSpent:      2,
		AcceptanceCriteria: []string{"login works", "tokens expire"},
	}
	if err := tr.LogSessionStart("sess-1", f); err != nil {
		t.Fatalf("LogSessionStart: %v", err)
	}

	content, _ := tr.Read()
	for _, want := range []string{
		"action: " + ActionSessionStarted,
		"session_id: sess-1",
		"feature_id: auth",
		`"User authentication"`,
		"priority 8",
		"session 2",
		"- login works",
		"- tokens expire",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestLogSessionStart_NoCriteriaSection(t *testing.T) {
	tr, _ := testTracker(t)

	f := &backlog.Feature{ID: "bare", Name: "bare"}
	if err := tr.LogSessionStart("s", f); err != nil {
		t.Fatalf("LogSessionStart: %v", err)
	}
	content, _ := tr.Read()
	if strings.Contains(content, "Acceptance criteria") {
		t.Error("no criteria section expected for a feature without criteria")
	}
}

// --- LogHandoff ---

func TestLogHandoff_AllSections(t *testing.T) {
	tr, _ := testTracker(t)

	err := tr.LogHandoff("sess-2", "auth", "refactored token store",
		[]string{"store.go", "store_test.go"}, "abc1234", "wire the refresh endpoint")
	if err != nil {
		t.Fatalf("LogHandoff: %v", err)
	}

	content, _ := tr.Read()
	for _, want := range []string{
		"action: " + ActionHandoff,
		"feature_id: auth",
		"refactored token store",
		"- store.go",
		"- store_test.go",
		"Commit: abc1234",
		"Next steps: wire the refresh endpoint",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestLogHandoff_OptionalPartsOmitted(t *testing.T) {
	tr, _ := testTracker(t)

	if err := tr.LogHandoff("s", "", "just a summary", nil, "", ""); err != nil {
		t.Fatalf("LogHandoff: %v", err)
	}
	content, _ := tr.Read()
	if strings.Contains(content, "Files changed") ||
		strings.Contains(content, "Commit:") ||
		strings.Contains(content, "Next steps:") {
		t.Errorf("optional sections should be omitted when empty:\n%s", content)
	}
}

// --- LogFeatureCompleted ---

func TestLogFeatureCompleted(t *testing.T) {
	tr, _ := testTracker(t)

	f := &backlog.Feature{ID: "auth", Name: "User authentication"}
	if err := tr.LogFeatureCompleted("sess-3", f, "all criteria pass", "def5678"); err != nil {
		t.Fatalf("LogFeatureCompleted: %v", err)
	}

	content, _ := tr.Read()
	for _, want := range []string{
		"action: " + ActionFeatureCompleted,
		"feature_id: auth",
		"all criteria pass",
		"Commit: def5678",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}
