package tools

import (
	"context"
	"fmt"

	"github.com/DilaraHst/ratchet/internal/progress"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProgressLogTool handles the progress_log MCP tool: a free-form append
// to the progress ledger for events that are not session starts,
// completions, or handoffs.
type ProgressLogTool struct{}

// NewProgressLogTool creates a ProgressLogTool.
func NewProgressLogTool() *ProgressLogTool {
	return &ProgressLogTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressLogTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_log",
		mcp.WithDescription(
			"Append an entry to the progress ledger. The ledger is "+
				"append-only and survives unbounded growth: once the live "+
				"file crosses the rotation threshold, older entries move "+
				"to an immutable archive file.",
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("What happened"),
		),
		mcp.WithString("action",
			mcp.Description("Entry tag, e.g. note, decision (default: note)"),
		),
		mcp.WithString("feature_id",
			mcp.Description("Feature this entry relates to, if any"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier (default: generated)"),
		),
	)
}

// Handle processes the progress_log tool call.
func (t *ProgressLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	if err := tracker.Append(progress.Entry{
		SessionID: sessionID,
		FeatureID: req.GetString("feature_id", ""),
		Action:    req.GetString("action", "note"),
		Summary:   summary,
	}); err != nil {
		return nil, err
	}

	return mcp.NewToolResultText("Logged."), nil
}
