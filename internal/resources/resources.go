// Package resources implements the MCP resource handlers for the harness.
//
// Resources provide read-only data the host can pull for context. They
// use URI-based addressing (ratchet://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DilaraHst/ratchet/internal/backlog"
	"github.com/DilaraHst/ratchet/internal/config"
	"github.com/DilaraHst/ratchet/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages the harness resource endpoints.
type Handler struct {
	store backlog.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store backlog.Store) *Handler {
	return &Handler{store: store}
}

// BacklogResource returns the MCP resource definition for backlog status.
func (h *Handler) BacklogResource() mcp.Resource {
	return mcp.NewResource(
		"ratchet://backlog/status",
		"Backlog Status",
		mcp.WithResourceDescription("Aggregate backlog counts and per-feature state"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleBacklog returns the backlog and its summary as JSON.
func (h *Handler) HandleBacklog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := findResourceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	b, issues, err := h.store.Load(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	payload := struct {
		Summary  backlog.Summary  `json:"summary"`
		Complete bool             `json:"complete"`
		Issues   []string         `json:"issues,omitempty"`
		Backlog  *backlog.Backlog `json:"backlog"`
	}{
		Summary:  backlog.Summarize(b),
		Complete: backlog.IsComplete(b),
		Backlog:  b,
	}
	for _, issue := range issues {
		payload.Issues = append(payload.Issues, issue.String())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling backlog status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ProgressResource returns the MCP resource definition for the ledger.
func (h *Handler) ProgressResource() mcp.Resource {
	return mcp.NewResource(
		"ratchet://progress/log",
		"Progress Ledger",
		mcp.WithResourceDescription("Recent entries from the live progress log"),
		mcp.WithMIMEType("text/plain"),
	)
}

// HandleProgress returns the recent tail of the progress ledger.
func (h *Handler) HandleProgress(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := findResourceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	tracker := progress.New(projectRoot, cfg.ProgressRotationThresholdKB, cfg.ProgressKeepEntries)

	content, err := tracker.ReadRecent(100)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}

// findResourceRoot walks up from the working directory looking for a
// ratchet/backlog.json, mirroring the tools package.
func findResourceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, backlog.DataDir, backlog.BacklogFile)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
