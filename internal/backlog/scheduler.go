package backlog

import "fmt"

// --- Scheduler ---
//
// Selection is pure: NextFeature and IsComplete read the backlog without
// mutating it. The two mark operations are the only mutation points.

// NextFeature picks the next unit of work, or nil when nothing can run.
//
// In-progress work always takes precedence over starting new work, even
// when a pending feature has a higher priority — abandoning a partially
// completed session to chase priority would lose context. Among candidates
// of equal priority, the one listed first in the backlog wins.
//
// A nil result means either the backlog is complete or every remaining
// feature is blocked by unmet dependencies; IsComplete distinguishes the
// two cases.
func NextFeature(b *Backlog) *Feature {
	if f := pickHighest(b, func(f *Feature) bool {
		return f.Status == StatusInProgress
	}); f != nil {
		return f
	}

	// Precompute the completed-id set so eligibility is a map lookup
	// instead of a scan per dependency.
	completed := make(map[string]bool, len(b.Features))
	known := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		known[b.Features[i].ID] = true
		if b.Features[i].Status == StatusCompleted {
			completed[b.Features[i].ID] = true
		}
	}

	return pickHighest(b, func(f *Feature) bool {
		if f.Status != StatusPending {
			return false
		}
		for _, dep := range f.DependsOn {
			// A dangling dependency can never complete, so the feature
			// is permanently ineligible. Validate reports the condition.
			if !known[dep] || !completed[dep] {
				return false
			}
		}
		return true
	})
}

// pickHighest returns the first-seen feature with the greatest priority
// among those matching the predicate, or nil if none match.
func pickHighest(b *Backlog, match func(*Feature) bool) *Feature {
	var best *Feature
	for i := range b.Features {
		f := &b.Features[i]
		if !match(f) {
			continue
		}
		if best == nil || f.Priority > best.Priority {
			best = f
		}
	}
	return best
}

// IsComplete reports whether every feature is COMPLETED.
// An empty backlog is vacuously complete.
func IsComplete(b *Backlog) bool {
	for i := range b.Features {
		if b.Features[i].Status != StatusCompleted {
			return false
		}
	}
	return true
}

// MarkStarted transitions a feature to IN_PROGRESS and counts the session.
//
// started_at is set only on the first start, so resuming an in-progress
// feature keeps its original start time — but sessions_spent increments on
// every call, modeling "picking the feature up again". Calling this on an
// already-COMPLETED feature is a no-op guard: the status, timestamps, and
// counter are left untouched.
func MarkStarted(b *Backlog, id string) error {
	f, err := b.Find(id)
	if err != nil {
		return err
	}

	if f.Status == StatusCompleted {
		return nil
	}

	f.Status = StatusInProgress
	if f.StartedAt == "" {
		f.StartedAt = timeNow().UTC().Format(timeLayout)
	}
	f.SessionsSpent++
	return nil
}

// MarkCompleted transitions a feature to COMPLETED and records a note.
//
// Completion is monotonic: once completed, the scheduler never returns the
// feature again and its dependents become eligible.
func MarkCompleted(b *Backlog, id, note string) error {
	f, err := b.Find(id)
	if err != nil {
		return err
	}

	f.Status = StatusCompleted
	f.CompletedAt = timeNow().UTC().Format(timeLayout)
	if note != "" {
		f.ImplementationNotes = append(f.ImplementationNotes, note)
	}
	return nil
}

// Summary holds per-status counts plus the blocked remainder, used by the
// status tool and resource.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	// Blocked counts pending features that are not currently eligible:
	// at least one dependency is not completed (or does not exist).
	Blocked int `json:"blocked"`
}

// Summarize computes aggregate counts over the backlog.
func Summarize(b *Backlog) Summary {
	s := Summary{Total: len(b.Features)}

	completed := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		if b.Features[i].Status == StatusCompleted {
			completed[b.Features[i].ID] = true
		}
	}

	for i := range b.Features {
		f := &b.Features[i]
		switch f.Status {
		case StatusPending:
			s.Pending++
			for _, dep := range f.DependsOn {
				if !completed[dep] {
					s.Blocked++
					break
				}
			}
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d total: %d completed, %d in progress, %d pending (%d blocked)",
		s.Total, s.Completed, s.InProgress, s.Pending, s.Blocked)
}
