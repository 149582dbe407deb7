// Package progress implements the append-only activity ledger for a
// project: a single human-readable log file with structured entry blocks,
// bounded in working-set size by threshold-triggered rotation into
// immutable archive files.
package progress

import (
	"fmt"
	"strings"
)

// Entry is one ledger record. Entries are immutable once appended; the
// creation timestamp is stamped by the tracker at append time.
type Entry struct {
	SessionID string
	FeatureID string // optional
	Action    string // free-form tag, e.g. "session_started", "COMPLETED", "HANDOFF"
	Summary   string
}

// Field labels rendered into each entry block. They are literal on-disk
// strings: plain-text search locates any field by its label.
const (
	labelAction    = "action:"
	labelSessionID = "session_id:"
	labelFeatureID = "feature_id:"
	labelSummary   = "summary:"
)

// entryPrefix starts every entry block. Everything before the first
// occurrence is the file header (including rotation markers from earlier
// rotations, so history stays discoverable by reading forward).
const entryPrefix = "## "

// format renders the entry as a greppable block with a timestamp heading.
// Multi-line summaries keep their line breaks, but continuation lines are
// indented two spaces: summaries are free-form text (agents paste
// markdown), so nothing inside one may start a line with the entry
// prefix. splitLog boundaries are therefore always real headings.
func (e Entry) format(timestamp string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", entryPrefix, timestamp)
	fmt.Fprintf(&b, "%s %s\n", labelAction, e.Action)
	fmt.Fprintf(&b, "%s %s\n", labelSessionID, e.SessionID)
	if e.FeatureID != "" {
		fmt.Fprintf(&b, "%s %s\n", labelFeatureID, e.FeatureID)
	}
	summary := strings.TrimRight(e.Summary, "\n")
	summary = strings.ReplaceAll(summary, "\n", "\n  ")
	fmt.Fprintf(&b, "%s %s\n", labelSummary, summary)
	b.WriteString("\n")
	return b.String()
}

// splitLog partitions raw log content into the header (everything before
// the first entry heading) and the sequence of entry blocks, each block
// returned verbatim including its heading. Used by rotation, which must
// move blocks between files without altering a single byte of them.
func splitLog(content string) (header string, entries []string) {
	lines := strings.SplitAfter(content, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, entryPrefix) {
			start = i
			break
		}
	}
	if start < 0 {
		return content, nil
	}

	header = strings.Join(lines[:start], "")

	blockStart := start
	for i := start + 1; i <= len(lines); i++ {
		if i == len(lines) || strings.HasPrefix(lines[i], entryPrefix) {
			entries = append(entries, strings.Join(lines[blockStart:i], ""))
			blockStart = i
		}
	}
	return header, entries
}
