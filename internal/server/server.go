// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/DilaraHst/ratchet/internal/prompts"
	"github.com/DilaraHst/ratchet/internal/resources"
	"github.com/DilaraHst/ratchet/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New() *server.MCPServer {
	// --- Create shared dependencies ---

	store := backlog.NewFileStore()

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"ratchet",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register backlog tools ---

	initTool := tools.NewBacklogInitTool(store)
	s.AddTool(initTool.Definition(), initTool.Handle)

	addTool := tools.NewBacklogAddTool(store)
	s.AddTool(addTool.Definition(), addTool.Handle)

	nextTool := tools.NewBacklogNextTool(store)
	s.AddTool(nextTool.Definition(), nextTool.Handle)

	startTool := tools.NewBacklogStartTool(store)
	s.AddTool(startTool.Definition(), startTool.Handle)

	completeTool := tools.NewBacklogCompleteTool(store)
	s.AddTool(completeTool.Definition(), completeTool.Handle)

	statusTool := tools.NewBacklogStatusTool(store)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	// --- Register progress ledger tools ---
	//
	// The ledger is independent from the backlog — free-form notes work
	// even before a backlog exists. Tools resolve the project root and
	// rotation settings per call, so config edits take effect without a
	// restart.

	logTool := tools.NewProgressLogTool()
	s.AddTool(logTool.Definition(), logTool.Handle)

	handoffTool := tools.NewProgressHandoffTool()
	s.AddTool(handoffTool.Definition(), handoffTool.Handle)

	readTool := tools.NewProgressReadTool()
	s.AddTool(readTool.Definition(), readTool.Handle)

	// --- Register token usage tools ---
	//
	// Usage accounting is a best-effort subsystem: it opens its SQLite
	// database per call, so a broken usage.db never blocks backlog or
	// ledger operations.

	usageRecordTool := tools.NewUsageRecordTool()
	s.AddTool(usageRecordTool.Definition(), usageRecordTool.Handle)

	usageReportTool := tools.NewUsageReportTool()
	s.AddTool(usageReportTool.Definition(), usageReportTool.Handle)

	// --- Register prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	handoffPrompt := prompts.NewHandoffPrompt()
	s.AddPrompt(handoffPrompt.Definition(), handoffPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.BacklogResource(), resourceHandler.HandleBacklog)
	s.AddResource(resourceHandler.ProgressResource(), resourceHandler.HandleProgress)

	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to use ratchet effectively.
func serverInstructions() string {
	return `You have access to ratchet, a work-state tracker for long-running coding projects.

## What ratchet Does

ratchet keeps three things on disk so they survive between your sessions:
1. A feature BACKLOG with priorities, dependencies, and acceptance criteria
2. A PROGRESS LEDGER — an append-only log of what happened, rotated automatically
3. TOKEN USAGE accounting per session and per feature

Everything lives under <project>/ratchet/ in the repository, so it travels
with the code and survives context compaction, restarts, and handoffs
between sessions.

## Session Start (do this FIRST in every session)

1. Call backlog_status to see where the project stands
2. Call progress_read to see what previous sessions did and what they
   left as next steps
3. Call backlog_next to see which feature to work on
4. Call backlog_start with that feature's id — this records the session
   and logs a session_started entry with the acceptance criteria

NEVER pick a feature yourself when backlog_next returns one: the scheduler
resumes in-progress work first, then respects priorities and dependencies.

## During the Session

- Log meaningful events with progress_log: decisions made, bugs found,
  approaches rejected. Future sessions only know what you write down.
- When you finish a feature and its acceptance criteria pass, call
  backlog_complete with a summary of what was built.
- Record token usage with usage_record — pass explicit counts or paste
  the transcript footer and let the tool scrape the numbers.

## Session End (before context runs out)

Call progress_handoff with:
- summary: what you accomplished this session
- files_changed: the files you touched
- commit_hash: if you committed
- next_steps: CONCRETE next actions — the next session starts from these

A good handoff means the next session loses zero time re-discovering state.

## Adding Work

Use backlog_add to register features. Give each one:
- A stable id (kebab-case, e.g. "user-auth")
- A priority (higher number = more important)
- depends_on ids for ordering constraints
- acceptance_criteria — concrete, verifiable conditions

## Important Rules

- ONE feature in progress at a time — finish or hand off before starting another
- NEVER edit files under ratchet/ by hand — use the tools
- ALWAYS write a handoff before the session ends
- Acceptance criteria are the definition of done — do not call
  backlog_complete until they pass`
}
