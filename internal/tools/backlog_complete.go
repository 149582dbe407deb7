package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogCompleteTool handles the backlog_complete MCP tool.
// Completion is monotonic: the scheduler never offers a completed feature
// again, and its dependents become eligible.
type BacklogCompleteTool struct {
	store backlog.Store
}

// NewBacklogCompleteTool creates a BacklogCompleteTool with the given store.
func NewBacklogCompleteTool(store backlog.Store) *BacklogCompleteTool {
	return &BacklogCompleteTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *BacklogCompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("backlog_complete",
		mcp.WithDescription(
			"Mark a feature as completed, record an implementation note, "+
				"and log the completion to the progress ledger. Dependent "+
				"features become eligible for scheduling.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Feature id to complete"),
		),
		mcp.WithString("note",
			mcp.Description("Implementation note appended to the feature"),
		),
		mcp.WithString("summary",
			mcp.Description("One-line summary for the progress ledger"),
		),
		mcp.WithString("commit_hash",
			mcp.Description("Commit that finished the feature"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier (default: generated)"),
		),
	)
}

// Handle processes the backlog_complete tool call.
func (t *BacklogCompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	if err := backlog.MarkCompleted(b, id, req.GetString("note", "")); err != nil {
		if errors.Is(err, backlog.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Feature %q not found.", id)), nil
		}
		return nil, err
	}

	if err := t.store.Save(projectRoot, b); err != nil {
		return nil, fmt.Errorf("saving backlog: %w", err)
	}

	f, _ := b.Find(id)
	tracker, err := newTracker(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := tracker.Initialize(b.ProjectName); err != nil {
		return nil, err
	}
	if err := tracker.LogFeatureCompleted(sessionID, f,
		req.GetString("summary", ""), req.GetString("commit_hash", "")); err != nil {
		return nil, fmt.Errorf("logging completion: %w", err)
	}

	summary := backlog.Summarize(b)
	done := ""
	if backlog.IsComplete(b) {
		done = "\n🎉 That was the last one — the backlog is complete."
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Completed %q. Backlog now %s.%s%s",
		f.Name, summary, done, formatIssues(issues))), nil
}
