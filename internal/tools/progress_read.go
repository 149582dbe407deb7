package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ProgressReadTool handles the progress_read MCP tool.
type ProgressReadTool struct{}

// NewProgressReadTool creates a ProgressReadTool.
func NewProgressReadTool() *ProgressReadTool {
	return &ProgressReadTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressReadTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_read",
		mcp.WithDescription(
			"Read the progress ledger. By default returns the most recent "+
				"lines of the live log (with a truncation marker when older "+
				"lines were dropped); set full=true for the entire live "+
				"file. Rotated history lives in the archive files listed at "+
				"the end.",
		),
		mcp.WithNumber("lines",
			mcp.Description("How many recent lines to return (default 50)"),
		),
		mcp.WithBoolean("full",
			mcp.Description("Return the entire live file instead of a tail"),
		),
	)
}

// Handle processes the progress_read tool call.
func (t *ProgressReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	tracker, err := newTracker(projectRoot)
	if err != nil {
		return nil, err
	}

	var content string
	if req.GetBool("full", false) {
		content, err = tracker.Read()
	} else {
		content, err = tracker.ReadRecent(int(req.GetFloat("lines", 50)))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	archives, err := tracker.ArchiveFiles()
	if err != nil {
		return nil, err
	}
	if len(archives) > 0 {
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\nArchives (oldest first):\n")
		for _, a := range archives {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
		content = b.String()
	}

	return mcp.NewToolResultText(content), nil
}
