package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogStatusTool handles the backlog_status MCP tool.
type BacklogStatusTool struct {
	store backlog.Store
}

// NewBacklogStatusTool creates a BacklogStatusTool with the given store.
func NewBacklogStatusTool(store backlog.Store) *BacklogStatusTool {
	return &BacklogStatusTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_status",
		mcp.WithDescription(
			"Show the full backlog: per-feature status, priorities, "+
				"dependencies, aggregate counts, and any configuration "+
				"issues (dangling dependencies, duplicate ids).",
		),
	)
}

// Handle processes the backlog_status tool call.
func (t *BacklogStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	b, issues, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := backlog.Summarize(b)

	var body strings.Builder
	fmt.Fprintf(&body, "# Backlog — %s\n\n", b.ProjectName)
	fmt.Fprintf(&body, "%s\n", summary)
	if backlog.IsComplete(b) {
		body.WriteString("Status: ✅ complete\n")
	}
	body.WriteString("\n")

	for i := range b.Features {
		fmt.Fprintf(&body, "%s\n", featureLine(&b.Features[i]))
	}
	if len(b.Features) == 0 {
		body.WriteString("(empty — add features with `backlog_add`)\n")
	}

	body.WriteString(formatIssues(issues))
	return mcp.NewToolResultText(body.String()), nil
}
