package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogAddTool handles the backlog_add MCP tool.
type BacklogAddTool struct {
	store backlog.Store
}

// NewBacklogAddTool creates a BacklogAddTool with the given store.
func NewBacklogAddTool(store backlog.Store) *BacklogAddTool {
	return &BacklogAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogAddTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_add",
		mcp.WithDescription(
			"Add a feature to the backlog. Features start as pending; the "+
				"scheduler only offers a feature once every id in depends_on "+
				"is completed. Higher priority means more urgent.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique, stable feature id (never reused)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Short display name"),
		),
		mcp.WithString("description",
			mcp.Description("What the feature is"),
		),
		mcp.WithString("category",
			mcp.Description("Classification tag, e.g. functional (informational only)"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Integer priority; higher value = more urgent (default 0)"),
		),
		mcp.WithString("depends_on",
			mcp.Description("Comma-separated feature ids that must be completed first"),
		),
		mcp.WithString("acceptance_criteria",
			mcp.Description("Acceptance criteria, one per line"),
		),
	)
}

// Handle processes the backlog_add tool call.
func (t *BacklogAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	name := req.GetString("name", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	b, _, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := b.Find(id); err == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Feature %q already exists — ids are stable and never reused.", id)), nil
	}

	f := backlog.Feature{
		ID:                 id,
		Name:               name,
		Description:        req.GetString("description", ""),
		Category:           req.GetString("category", ""),
		Status:             backlog.StatusPending,
		Priority:           int(req.GetFloat("priority", 0)),
		DependsOn:          splitList(req.GetString("depends_on", ""), ","),
		AcceptanceCriteria: splitList(req.GetString("acceptance_criteria", ""), "\n"),
	}
	b.Features = append(b.Features, f)

	issues := backlog.Validate(b)
	if err := t.store.Save(projectRoot, b); err != nil {
		return nil, fmt.Errorf("saving backlog: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Added feature %q (priority %d).\n%s%s",
		id, f.Priority, featureLine(&b.Features[len(b.Features)-1]), formatIssues(issues))), nil
}

// splitList splits a delimited parameter into trimmed, non-empty items.
func splitList(raw, sep string) []string {
	var items []string
	for _, part := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
