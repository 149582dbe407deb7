package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProgressHandoffTool handles the progress_handoff MCP tool.
// A handoff entry is the cross-session continuity record: what changed,
// the commit it landed in, and what the next session should do first.
type ProgressHandoffTool struct{}

// NewProgressHandoffTool creates a ProgressHandoffTool.
func NewProgressHandoffTool() *ProgressHandoffTool {
	return &ProgressHandoffTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressHandoffTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_handoff",
		mcp.WithDescription(
			"Record a HANDOFF entry in the progress ledger before ending a "+
				"session: summary, files changed, commit hash, and next "+
				"steps. The next session reads this first.",
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("What this session accomplished"),
		),
		mcp.WithString("feature_id",
			mcp.Description("Feature being handed off"),
		),
		mcp.WithString("files_changed",
			mcp.Description("Comma-separated list of changed files"),
		),
		mcp.WithString("commit_hash",
			mcp.Description("Commit the work landed in"),
		),
		mcp.WithString("next_steps",
			mcp.Description("What the next session should do first"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier (default: generated)"),
		),
	)
}

// Handle processes the progress_handoff tool call.
func (t *ProgressHandoffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := req.GetString("summary", "")
	if summary == "" {
		return mcp.NewToolResultError("'summary' is required"), nil
	}
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	tracker, err := newTracker(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := tracker.LogHandoff(
		sessionID,
		req.GetString("feature_id", ""),
		summary,
		splitList(req.GetString("files_changed", ""), ","),
		req.GetString("commit_hash", ""),
		req.GetString("next_steps", ""),
	); err != nil {
		return nil, fmt.Errorf("logging handoff: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Handoff recorded for session %s.", sessionID)), nil
}
