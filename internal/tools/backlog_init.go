package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogInitTool handles the backlog_init MCP tool.
// It bootstraps a project: an empty backlog and the progress log header.
type BacklogInitTool struct {
	store backlog.Store
}

// NewBacklogInitTool creates a BacklogInitTool with the given store.
func NewBacklogInitTool(store backlog.Store) *BacklogInitTool {
	return &BacklogInitTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogInitTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_init",
		mcp.WithDescription(
			"Initialize ratchet for a project: creates ratchet/backlog.json "+
				"with an empty feature list and the progress log header. "+
				"Safe to call again — an existing backlog is never overwritten.",
		),
		mcp.WithString("project_name",
			mcp.Required(),
			mcp.Description("Human-readable project name"),
		),
		mcp.WithString("project_path",
			mcp.Description("Project root directory (default: current working directory)"),
		),
	)
}

// Handle processes the backlog_init tool call.
func (t *BacklogInitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName := req.GetString("project_name", "")
	if projectName == "" {
		return mcp.NewToolResultError("'project_name' is required"), nil
	}

	projectRoot := req.GetString("project_path", "")
	if projectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		projectRoot = cwd
	}

	if t.store.Exists(projectRoot) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Backlog already exists at %s — leaving it as is.", backlog.BacklogPath(projectRoot))), nil
	}

	b := &backlog.Backlog{
		ProjectName: projectName,
		ProjectPath: projectRoot,
	}
	if err := t.store.Save(projectRoot, b); err != nil {
		return nil, fmt.Errorf("saving backlog: %w", err)
	}

	tracker, err := newTracker(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := tracker.Initialize(projectName); err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Initialized ratchet for %q.\n- Backlog: %s\n- Progress log: %s\n\n"+
			"Add features with `backlog_add`.",
		projectName, backlog.BacklogPath(projectRoot), tracker.LogPath())), nil
}
