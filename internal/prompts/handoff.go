package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// HandoffPrompt handles the ratchet-handoff MCP prompt.
// It walks the AI through ending a session cleanly.
type HandoffPrompt struct{}

// NewHandoffPrompt creates a HandoffPrompt.
func NewHandoffPrompt() *HandoffPrompt {
	return &HandoffPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *HandoffPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ratchet-handoff",
		mcp.WithPromptDescription(
			"End the session cleanly: record a handoff entry so the next "+
				"session can pick up without re-discovering context.",
		),
	)
}

// Handle processes the ratchet-handoff prompt request.
func (p *HandoffPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Session Handoff",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"We're wrapping up this session. Please:\n" +
						"1. Summarize what was accomplished and which files changed\n" +
						"2. If a feature was finished, call `backlog_complete` with a note and commit hash\n" +
						"3. Otherwise call `progress_handoff` with the summary, files changed, commit hash, and concrete next steps\n" +
						"4. Call `usage_record` with this session's token usage if you have it",
				),
			},
		},
	}, nil
}
