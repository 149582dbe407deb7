package progress

import (
	"fmt"
	"strings"

	"github.com/DilaraHst/ratchet/internal/backlog"
)

// Session logging helpers: thin formatters that build an Entry from a
// domain event and append it. They introduce no state of their own.

// Well-known action tags. Action is free-form on the wire; these are the
// tags the harness itself writes.
const (
	ActionSessionStarted   = "session_started"
	ActionHandoff          = "HANDOFF"
	ActionFeatureCompleted = "COMPLETED"
	ActionUsageRecorded    = "usage_recorded"
)

// LogSessionStart records that a session picked up a feature. The summary
// names the feature and lists its acceptance criteria so a later session
// can grep for what "done" meant at the time.
func (t *Tracker) LogSessionStart(sessionID string, f *backlog.Feature) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Started work on %q (id: %s, priority %d, session %d)",
		f.Name, f.ID, f.Priority, f.SessionsSpent)
	if len(f.AcceptanceCriteria) > 0 {
		b.WriteString("\nAcceptance criteria:")
		for _, c := range f.AcceptanceCriteria {
			fmt.Fprintf(&b, "\n  - %s", c)
		}
	}

	return t.Append(Entry{
		SessionID: sessionID,
		FeatureID: f.ID,
		Action:    ActionSessionStarted,
		Summary:   b.String(),
	})
}

// LogHandoff records cross-session continuity info: what changed, the
// commit it landed in, and what the next session should do first.
func (t *Tracker) LogHandoff(sessionID, featureID, summary string, filesChanged []string, commitHash, nextSteps string) error {
	var b strings.Builder
	b.WriteString(summary)
	if len(filesChanged) > 0 {
		b.WriteString("\nFiles changed:")
		for _, f := range filesChanged {
			fmt.Fprintf(&b, "\n  - %s", f)
		}
	}
	if commitHash != "" {
		fmt.Fprintf(&b, "\nCommit: %s", commitHash)
	}
	if nextSteps != "" {
		fmt.Fprintf(&b, "\nNext steps: %s", nextSteps)
	}

	return t.Append(Entry{
		SessionID: sessionID,
		FeatureID: featureID,
		Action:    ActionHandoff,
		Summary:   b.String(),
	})
}

// LogFeatureCompleted records a feature's completion with the commit that
// finished it.
func (t *Tracker) LogFeatureCompleted(sessionID string, f *backlog.Feature, summary, commitHash string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Completed %q (id: %s)", f.Name, f.ID)
	if summary != "" {
		fmt.Fprintf(&b, ": %s", summary)
	}
	if commitHash != "" {
		fmt.Fprintf(&b, "\nCommit: %s", commitHash)
	}

	return t.Append(Entry{
		SessionID: sessionID,
		FeatureID: f.ID,
		Action:    ActionFeatureCompleted,
		Summary:   b.String(),
	})
}
