// Package prompts implements the MCP prompts exposed by the harness.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the ratchet-status MCP prompt.
// It instructs the AI to read and present the current work state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ratchet-status",
		mcp.WithPromptDescription(
			"Check the current work state: backlog progress, what is in "+
				"flight, what is blocked, and recent ledger activity.",
		),
	)
}

// Handle processes the ratchet-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Ratchet Work Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `backlog_status` and `progress_read` to check the project's work state.\n\n" +
						"Then:\n" +
						"1. Summarize backlog progress (completed / in progress / pending / blocked)\n" +
						"2. Call out anything blocked and what unblocks it\n" +
						"3. Quote the most recent HANDOFF entry if there is one\n" +
						"4. Tell me exactly what to work on next (use `backlog_next`)",
				),
			},
		},
	}, nil
}
