package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/DilaraHst/ratchet/internal/progress"
	"github.com/DilaraHst/ratchet/internal/usage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// UsageRecordTool handles the usage_record MCP tool.
// It accepts either explicit token counters or a raw transcript to scrape,
// stores the record in the accounting ledger, and notes the totals in the
// progress ledger.
type UsageRecordTool struct{}

// NewUsageRecordTool creates a UsageRecordTool.
func NewUsageRecordTool() *UsageRecordTool {
	return &UsageRecordTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *UsageRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("usage_record",
		mcp.WithDescription(
			"Record token usage and cost for a session. Pass explicit "+
				"counters, or pass the agent transcript in `transcript` and "+
				"the counters are scraped from it. Counters are additive — "+
				"record as often as you like.",
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier (default: generated)"),
		),
		mcp.WithString("feature_id",
			mcp.Description("Feature the usage is attributed to"),
		),
		mcp.WithString("transcript",
			mcp.Description("Agent transcript text to scrape counters from"),
		),
		mcp.WithNumber("input_tokens",
			mcp.Description("Explicit input token count"),
		),
		mcp.WithNumber("output_tokens",
			mcp.Description("Explicit output token count"),
		),
		mcp.WithNumber("cache_tokens",
			mcp.Description("Explicit cache token count"),
		),
		mcp.WithNumber("cost_usd",
			mcp.Description("Explicit cost in USD"),
		),
	)
}

// Handle processes the usage_record tool call.
func (t *UsageRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r := usage.Record{
		SessionID:    sessionID,
		FeatureID:    req.GetString("feature_id", ""),
		InputTokens:  int64(req.GetFloat("input_tokens", 0)),
		OutputTokens: int64(req.GetFloat("output_tokens", 0)),
		CacheTokens:  int64(req.GetFloat("cache_tokens", 0)),
		CostUSD:      req.GetFloat("cost_usd", 0),
	}

	if transcript := req.GetString("transcript", ""); transcript != "" {
		scraped, ok := usage.Scrape(transcript)
		if !ok && r.InputTokens == 0 && r.OutputTokens == 0 && r.CostUSD == 0 {
			return mcp.NewToolResultError(
				"No token counters found in the transcript and no explicit counts given."), nil
		}
		r.InputTokens += scraped.InputTokens
		r.OutputTokens += scraped.OutputTokens
		r.CacheTokens += scraped.CacheTokens
		r.CostUSD += scraped.CostUSD
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	// Accounting is an optional subsystem: when its database cannot be
	// opened, backlog and progress tools keep working.
	store, err := usage.New(projectRoot)
	if err != nil {
		log.Printf("WARNING: usage accounting unavailable: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("Usage accounting unavailable: %v", err)), nil
	}
	defer store.Close()

	if _, err := store.Add(r); err != nil {
		return nil, err
	}
	totals, err := store.SessionTotals(sessionID)
	if err != nil {
		return nil, err
	}

	// The accounting ledger's only touch on the progress ledger: a
	// usage_recorded entry so the audit trail shows spend alongside work.
	// A failed ledger write fails the call. The usage row is already
	// stored, so the result says exactly that.
	tracker, err := newTracker(projectRoot)
	if err == nil {
		err = tracker.Append(progress.Entry{
			SessionID: sessionID,
			FeatureID: r.FeatureID,
			Action:    progress.ActionUsageRecorded,
			Summary: fmt.Sprintf("in=%d out=%d cache=%d cost=$%.4f (session totals: in=%d out=%d cost=$%.4f)",
				r.InputTokens, r.OutputTokens, r.CacheTokens, r.CostUSD,
				totals.InputTokens, totals.OutputTokens, totals.CostUSD),
		})
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Usage row stored for session %s, but the progress ledger write failed: %v",
			sessionID, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Recorded usage for session %s: in=%d out=%d cache=%d cost=$%.4f",
		sessionID, r.InputTokens, r.OutputTokens, r.CacheTokens, r.CostUSD)), nil
}
