// Package tools implements the MCP tool handlers for the harness.
//
// Each tool is a struct that receives dependencies via its constructor
// (DIP) and exposes a Definition plus a Handle compatible with mcp-go's
// CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on backlog.Store and the progress/usage types, not
//   on where the files live
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/DilaraHst/ratchet/internal/config"
	"github.com/DilaraHst/ratchet/internal/progress"
)

// findProjectRoot walks up from the current working directory looking for
// an existing ratchet/backlog.json. If none is found, returns cwd — the
// caller decides what to do.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, backlog.DataDir, backlog.BacklogFile)
		if _, err := os.Stat(candidate); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// newTracker builds the progress tracker for a project root, applying the
// project's harness config (rotation threshold, keep count).
func newTracker(projectRoot string) (*progress.Tracker, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	return progress.New(projectRoot, cfg.ProgressRotationThresholdKB, cfg.ProgressKeepEntries), nil
}

// formatIssues renders validation issues as a warning section, or ""
// when the backlog is clean.
func formatIssues(issues []backlog.ValidationIssue) string {
	if len(issues) == 0 {
		return ""
	}
	out := "\n⚠️ Backlog configuration issues:\n"
	for _, issue := range issues {
		out += fmt.Sprintf("  - %s\n", issue)
	}
	return out
}

// featureLine renders a one-line summary of a feature for listings.
func featureLine(f *backlog.Feature) string {
	marker := "⬜"
	switch f.Status {
	case backlog.StatusInProgress:
		marker = "🔄"
	case backlog.StatusCompleted:
		marker = "✅"
	}
	line := fmt.Sprintf("%s %s — %s (priority %d", marker, f.ID, f.Name, f.Priority)
	if len(f.DependsOn) > 0 {
		line += fmt.Sprintf(", depends on %v", f.DependsOn)
	}
	if f.SessionsSpent > 0 {
		line += fmt.Sprintf(", %d session(s)", f.SessionsSpent)
	}
	return line + ")"
}
