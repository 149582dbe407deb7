package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// LogFile is the live ledger filename under the ratchet/ data dir.
	LogFile = "progress.log"
	// ArchiveDir is the subdirectory holding rotated-out entries.
	ArchiveDir = "archive"

	// DefaultRotationThresholdKB is the live-file size, in KB, past which
	// an append triggers rotation.
	DefaultRotationThresholdKB = 50
	// DefaultKeepEntries is how many recent entries survive a rotation.
	DefaultKeepEntries = 100

	// TruncationMarker prefixes ReadRecent output when lines were dropped,
	// so callers can tell a short log from a truncated one.
	TruncationMarker = "[... earlier progress truncated ...]"
)

// dataDir mirrors backlog.DataDir; duplicated here so the ledger has no
// dependency on the backlog package.
const dataDir = "ratchet"

// Tracker is the durable, append-only activity ledger for one project.
//
// Single-writer model: one harness process owns the live file at a time.
// Archive files, once written, are never reopened for writes.
type Tracker struct {
	projectRoot         string
	rotationThresholdKB int
	keepEntries         int
}

// New creates a Tracker rooted at projectRoot. Non-positive threshold or
// keep values fall back to the defaults.
func New(projectRoot string, rotationThresholdKB, keepEntries int) *Tracker {
	if rotationThresholdKB <= 0 {
		rotationThresholdKB = DefaultRotationThresholdKB
	}
	if keepEntries <= 0 {
		keepEntries = DefaultKeepEntries
	}
	return &Tracker{
		projectRoot:         projectRoot,
		rotationThresholdKB: rotationThresholdKB,
		keepEntries:         keepEntries,
	}
}

// LogPath returns the absolute path to the live progress log.
func (t *Tracker) LogPath() string {
	return filepath.Join(t.projectRoot, dataDir, LogFile)
}

// archivePath returns the absolute path to the archive directory.
func (t *Tracker) archivePath() string {
	return filepath.Join(t.projectRoot, dataDir, ArchiveDir)
}

// Initialize creates the live log with a header naming the project and its
// creation time — only if the file does not already exist. Calling it on
// an existing log is a no-op that preserves the content exactly, so it is
// safe to run on every harness startup.
func (t *Tracker) Initialize(projectName string) error {
	path := t.LogPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("progress: stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("progress: creating data directory: %w", err)
	}

	header := fmt.Sprintf("# Progress Log — %s\n\ncreated: %s\n\n",
		projectName, timeNow().UTC().Format(timeLayout))
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		return fmt.Errorf("progress: writing log header: %w", err)
	}
	return nil
}

// Append formats the entry as a structured block, appends it to the live
// file, and rotates if the file size now exceeds the threshold. Ledger I/O
// failures are fatal to the operation and surfaced — the ledger is an
// audit trail, so silent partial failure is worse than stopping.
func (t *Tracker) Append(e Entry) error {
	path := t.LogPath()
	block := e.format(timeNow().UTC().Format(timeLayout))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("progress: opening log: %w", err)
	}
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("progress: appending entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("progress: closing log: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("progress: stat after append: %w", err)
	}
	if info.Size() > int64(t.rotationThresholdKB)*1024 {
		return t.rotate()
	}
	return nil
}

// Read returns the full current live-file contents verbatim.
func (t *Tracker) Read() (string, error) {
	data, err := os.ReadFile(t.LogPath())
	if err != nil {
		return "", fmt.Errorf("progress: reading log: %w", err)
	}
	return string(data), nil
}

// ReadRecent returns at most the last n lines of the live file. When the
// file holds more lines than n, the result is prefixed with the
// truncation marker so callers can distinguish "short log" from
// "truncated for display".
func (t *Tracker) ReadRecent(n int) (string, error) {
	content, err := t.Read()
	if err != nil {
		return "", err
	}
	if n <= 0 {
		n = 50
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) <= n {
		return content, nil
	}
	tail := strings.Join(lines[len(lines)-n:], "\n")
	return TruncationMarker + "\n" + tail + "\n", nil
}

// ArchiveFiles enumerates archive files created by rotation, in creation
// order. Returns an empty slice when no rotation has happened yet.
func (t *Tracker) ArchiveFiles() ([]string, error) {
	entries, err := os.ReadDir(t.archivePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("progress: reading archive directory: %w", err)
	}

	type archive struct {
		path  string
		mtime int64
	}
	var archives []archive
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("progress: stat archive %s: %w", e.Name(), err)
		}
		archives = append(archives, archive{
			path:  filepath.Join(t.archivePath(), e.Name()),
			mtime: info.ModTime().UnixNano(),
		})
	}
	// Creation order: archives are written once and never touched again,
	// so mtime is creation time. Names tie-break same-instant writes.
	sort.Slice(archives, func(i, j int) bool {
		if archives[i].mtime != archives[j].mtime {
			return archives[i].mtime < archives[j].mtime
		}
		return archives[i].path < archives[j].path
	})

	paths := make([]string, len(archives))
	for i, a := range archives {
		paths[i] = a.path
	}
	return paths, nil
}

// rotate moves all but the most recent keepEntries entries into a new,
// uniquely named archive file, then rewrites the live file as
// header + rotation marker + retained entries.
//
// The transform is pure: read, split, write archive, write a temp live
// file, rename over the original. The archive is fully written before the
// live file is touched, and the rename is the single commit point — on any
// failure the live file is unchanged and the half-made archive is removed,
// so no entry is ever lost or duplicated.
func (t *Tracker) rotate() error {
	content, err := t.Read()
	if err != nil {
		return err
	}

	header, entries := splitLog(content)
	if len(entries) <= t.keepEntries {
		// Oversized header or oversized retained entries; nothing to move.
		return nil
	}

	old := entries[:len(entries)-t.keepEntries]
	recent := entries[len(entries)-t.keepEntries:]

	if err := os.MkdirAll(t.archivePath(), 0o755); err != nil {
		return fmt.Errorf("progress: creating archive directory: %w", err)
	}

	archiveName := t.uniqueArchiveName()
	archiveFile := filepath.Join(t.archivePath(), archiveName)
	if err := os.WriteFile(archiveFile, []byte(strings.Join(old, "")), 0o644); err != nil {
		return fmt.Errorf("progress: writing archive %s: %w", archiveName, err)
	}

	marker := fmt.Sprintf("> rotated: %d earlier entries archived to: %s\n\n",
		len(old), filepath.Join(ArchiveDir, archiveName))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(marker)
	b.WriteString(strings.Join(recent, ""))

	tmp := t.LogPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		os.Remove(archiveFile)
		return fmt.Errorf("progress: writing rotated log: %w", err)
	}
	if err := os.Rename(tmp, t.LogPath()); err != nil {
		os.Remove(tmp)
		os.Remove(archiveFile)
		return fmt.Errorf("progress: replacing live log: %w", err)
	}
	return nil
}

// uniqueArchiveName returns a timestamp-qualified archive filename,
// appending a numeric suffix on collision (several rotations within the
// same second).
func (t *Tracker) uniqueArchiveName() string {
	stamp := timeNow().UTC().Format("20060102T150405Z")
	name := fmt.Sprintf("progress-%s.log", stamp)
	suffix := 2
	for {
		if _, err := os.Stat(filepath.Join(t.archivePath(), name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("progress-%s-%d.log", stamp, suffix)
		suffix++
	}
}
