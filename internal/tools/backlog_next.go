package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogNextTool handles the backlog_next MCP tool.
// Selection is read-only: it never mutates the backlog. Use
// backlog_start to actually pick the feature up.
type BacklogNextTool struct {
	store backlog.Store
}

// NewBacklogNextTool creates a BacklogNextTool with the given store.
func NewBacklogNextTool(store backlog.Store) *BacklogNextTool {
	return &BacklogNextTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogNextTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_next",
		mcp.WithDescription(
			"Select the next feature to work on. In-progress work always "+
				"comes first (highest priority, then insertion order); "+
				"otherwise the highest-priority pending feature whose "+
				"dependencies are all completed. Read-only — call "+
				"backlog_start to claim the feature.",
		),
	)
}

// Handle processes the backlog_next tool call.
func (t *BacklogNextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	b, issues, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f := backlog.NextFeature(b)
	if f == nil {
		if backlog.IsComplete(b) {
			return mcp.NewToolResultText(
				"🎉 Backlog complete — every feature is done." + formatIssues(issues)), nil
		}
		summary := backlog.Summarize(b)
		return mcp.NewToolResultText(fmt.Sprintf(
			"No feature is eligible right now: %s.\n"+
				"Remaining work is blocked by unmet dependencies.%s",
			summary, formatIssues(issues))), nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# Next: %s\n\n", f.Name)
	fmt.Fprintf(&body, "**ID:** `%s`\n**Status:** %s\n**Priority:** %d\n", f.ID, f.Status, f.Priority)
	if f.Category != "" {
		fmt.Fprintf(&body, "**Category:** %s\n", f.Category)
	}
	if f.Description != "" {
		fmt.Fprintf(&body, "\n%s\n", f.Description)
	}
	if len(f.AcceptanceCriteria) > 0 {
		body.WriteString("\n## Acceptance criteria\n\n")
		for _, c := range f.AcceptanceCriteria {
			fmt.Fprintf(&body, "- %s\n", c)
		}
	}
	if f.Status == backlog.StatusInProgress {
		fmt.Fprintf(&body, "\nAlready in progress (%d session(s) spent) — resuming beats starting new work.\n", f.SessionsSpent)
	}
	fmt.Fprintf(&body, "\nClaim it with `backlog_start` (id: %s).\n", f.ID)
	body.WriteString(formatIssues(issues))

	return mcp.NewToolResultText(body.String()), nil
}
