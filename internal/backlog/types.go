// Package backlog holds the feature backlog for an agent-driven project:
// the data model, the scheduler that picks the next unit of work, and a
// JSON file store for persistence.
//
// The backlog is a single-writer, in-memory structure. One harness process
// owns it at a time; mutations happen in place through MarkStarted and
// MarkCompleted, and the caller persists the result via the Store.
//
// This package follows the same design principles as the rest of the repo:
// - SRP: types, scheduler, and store in separate files
// - DIP: Store is an interface; tools depend on the abstraction
package backlog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a feature id does not exist in the backlog.
// Callers should treat it as a configuration or usage error, not skip it.
var ErrNotFound = errors.New("feature not found")

// --- Status enum ---

// Status tracks the lifecycle of a feature. COMPLETED is terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// validStatuses is the set of allowed feature statuses.
var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid feature status %q: must be one of: pending, in_progress, completed", s)
	}
	return nil
}

// --- Core data structures ---

// QualityGates is an optional validation policy attached to a feature or
// set as the harness default. Every field is independently optional;
// absence means "not enforced", never an error.
type QualityGates struct {
	RequireTests      bool     `json:"require_tests,omitempty"`
	MaxFileLines      int      `json:"max_file_lines,omitempty"` // 0 = no limit
	SecurityChecklist []string `json:"security_checklist,omitempty"`
	LintCommand       string   `json:"lint_command,omitempty"`
	TypeCheckCommand  string   `json:"type_check_command,omitempty"`
	CustomValidators  []string `json:"custom_validators,omitempty"`
}

// Feature is one unit of backlog work. IDs are stable and never reused.
type Feature struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Status              Status        `json:"status"`
	Category            string        `json:"category,omitempty"` // informational, e.g. "functional"
	Priority            int           `json:"priority"`           // higher value = more urgent
	DependsOn           []string      `json:"depends_on,omitempty"`
	AcceptanceCriteria  []string      `json:"acceptance_criteria,omitempty"`
	QualityGates        *QualityGates `json:"quality_gates,omitempty"` // nil = harness default
	StartedAt           string        `json:"started_at,omitempty"`    // RFC3339, set on first start
	CompletedAt         string        `json:"completed_at,omitempty"`  // RFC3339, set on completion
	SessionsSpent       int           `json:"sessions_spent"`
	ImplementationNotes []string      `json:"implementation_notes,omitempty"`
}

// Backlog is the aggregate root: it exclusively owns its features.
// Feature order is insertion order — priority ordering is computed by the
// scheduler, never stored.
type Backlog struct {
	ProjectName string    `json:"project_name"`
	ProjectPath string    `json:"project_path"`
	Features    []Feature `json:"features"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
}

// Find returns a pointer to the feature with the given id, or ErrNotFound.
// The pointer aliases the backlog's own storage, so mutations through it
// are mutations of the backlog.
func (b *Backlog) Find(id string) (*Feature, error) {
	for i := range b.Features {
		if b.Features[i].ID == id {
			return &b.Features[i], nil
		}
	}
	return nil, fmt.Errorf("feature %q: %w", id, ErrNotFound)
}

// --- Load-time validation ---

// ValidationIssue describes one malformed backlog entry found by Validate.
type ValidationIssue struct {
	FeatureID string
	Message   string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("feature %q: %s", v.FeatureID, v.Message)
}

// Validate scans the backlog for configuration errors: duplicate ids,
// unknown statuses, and depends_on ids that do not resolve to a feature
// in the same backlog. Dangling dependencies are reported rather than
// fatal — the scheduler treats the affected feature as permanently
// ineligible so one malformed entry does not halt all progress — but the
// caller who loads the backlog should surface every issue returned here.
func Validate(b *Backlog) []ValidationIssue {
	var issues []ValidationIssue

	seen := make(map[string]bool, len(b.Features))
	ids := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		f := &b.Features[i]
		if seen[f.ID] {
			issues = append(issues, ValidationIssue{
				FeatureID: f.ID,
				Message:   "duplicate feature id",
			})
		}
		seen[f.ID] = true
		ids[f.ID] = true
	}

	for i := range b.Features {
		f := &b.Features[i]
		if err := ValidateStatus(f.Status); err != nil {
			issues = append(issues, ValidationIssue{
				FeatureID: f.ID,
				Message:   err.Error(),
			})
		}
		for _, dep := range f.DependsOn {
			if !ids[dep] {
				issues = append(issues, ValidationIssue{
					FeatureID: f.ID,
					Message:   fmt.Sprintf("depends_on references unknown feature %q", dep),
				})
			}
		}
	}

	return issues
}
