package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogStartTool handles the backlog_start MCP tool.
// It marks a feature in progress, persists the backlog, and appends a
// session_started entry to the progress ledger.
type BacklogStartTool struct {
	store backlog.Store
}

// NewBacklogStartTool creates a BacklogStartTool with the given store.
func NewBacklogStartTool(store backlog.Store) *BacklogStartTool {
	return &BacklogStartTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogStartTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_start",
		mcp.WithDescription(
			"Mark a feature as in progress and log the session start. "+
				"Starting an in-progress feature again counts another "+
				"session (resumed work) without resetting its start time. "+
				"Starting a completed feature is a no-op.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Feature id to start"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier (default: generated)"),
		),
	)
}

// Handle processes the backlog_start tool call.
func (t *BacklogStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	b, issues, err := t.store.Load(projectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := backlog.MarkStarted(b, id); err != nil {
		if errors.Is(err, backlog.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Feature %q not found — check the backlog, ids are not invented here.", id)), nil
		}
		return nil, err
	}

	f, _ := b.Find(id)
	if f.Status == backlog.StatusCompleted {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Feature %q is already completed — start ignored.", id)), nil
	}

	if err := t.store.Save(projectRoot, b); err != nil {
		return nil, fmt.Errorf("saving backlog: %w", err)
	}

	tracker, err := newTracker(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := tracker.Initialize(b.ProjectName); err != nil {
		return nil, err
	}
	if err := tracker.LogSessionStart(sessionID, f); err != nil {
		return nil, fmt.Errorf("logging session start: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Started %q (session %s, sessions_spent now %d).\n%s%s",
		f.Name, sessionID, f.SessionsSpent, featureLine(f), formatIssues(issues))), nil
}
