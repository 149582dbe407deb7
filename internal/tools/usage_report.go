package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/DilaraHst/ratchet/internal/usage"
	"github.com/mark3labs/mcp-go/mcp"
)

// UsageReportTool handles the usage_report MCP tool.
type UsageReportTool struct{}

// NewUsageReportTool creates a UsageReportTool.
func NewUsageReportTool() *UsageReportTool {
	return &UsageReportTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UsageReportTool) Definition() mcp.Tool {
	return mcp.NewTool("usage_report",
		mcp.WithDescription(
			"Report token usage: grand totals, optional per-session or "+
				"per-feature totals, and the most recent records.",
		),
		mcp.WithString("session_id",
			mcp.Description("Limit totals to one session"),
		),
		mcp.WithString("feature_id",
			mcp.Description("Limit totals to one feature"),
		),
		mcp.WithNumber("limit",
			mcp.Description("How many recent records to list (default 10)"),
		),
	)
}

// Handle processes the usage_report tool call.
func (t *UsageReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	store, err := usage.New(projectRoot)
	if err != nil {
		log.Printf("WARNING: usage accounting unavailable: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("Usage accounting unavailable: %v", err)), nil
	}
	defer store.Close()

	var b strings.Builder
	b.WriteString("# Token usage\n\n")

	switch {
	case req.GetString("session_id", "") != "":
		sid := req.GetString("session_id", "")
		totals, err := store.SessionTotals(sid)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "Session %s: %s\n", sid, formatTotals(totals))
	case req.GetString("feature_id", "") != "":
		fid := req.GetString("feature_id", "")
		totals, err := store.FeatureTotals(fid)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "Feature %s: %s\n", fid, formatTotals(totals))
	default:
		totals, err := store.GrandTotals()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "All sessions: %s\n", formatTotals(totals))
	}

	recent, err := store.Recent(int(req.GetFloat("limit", 10)))
	if err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		b.WriteString("\n## Recent records\n\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "- %s session=%s", r.CreatedAt, r.SessionID)
			if r.FeatureID != "" {
				fmt.Fprintf(&b, " feature=%s", r.FeatureID)
			}
			fmt.Fprintf(&b, " in=%d out=%d cache=%d cost=$%.4f\n",
				r.InputTokens, r.OutputTokens, r.CacheTokens, r.CostUSD)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// formatTotals renders one Totals rollup.
func formatTotals(t usage.Totals) string {
	return fmt.Sprintf("%d record(s), in=%d out=%d cache=%d cost=$%.4f",
		t.Records, t.InputTokens, t.OutputTokens, t.CacheTokens, t.CostUSD)
}
