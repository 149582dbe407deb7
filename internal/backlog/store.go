package backlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir is the subdirectory under the project root where ratchet
	// keeps its files (backlog, progress log, archives, config).
	DataDir = "ratchet"
	// BacklogFile is the filename for the persisted backlog.
	BacklogFile = "backlog.json"
)

// Store defines the persistence interface for the backlog.
// Abstracted for testability (DIP).
type Store interface {
	// Load reads the backlog for a project. The returned issues are the
	// result of Validate on the loaded value: non-fatal configuration
	// errors the caller should surface.
	Load(projectRoot string) (*Backlog, []ValidationIssue, error)
	Save(projectRoot string, b *Backlog) error
	Exists(projectRoot string) bool
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed backlog store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// DataPath returns the absolute path to the ratchet/ directory.
func DataPath(projectRoot string) string {
	return filepath.Join(projectRoot, DataDir)
}

// BacklogPath returns the absolute path to a project's backlog.json.
func BacklogPath(projectRoot string) string {
	return filepath.Join(DataPath(projectRoot), BacklogFile)
}

// Exists reports whether a backlog file is present for the project.
func (fs *FileStore) Exists(projectRoot string) bool {
	_, err := os.Stat(BacklogPath(projectRoot))
	return err == nil
}

// Load reads and validates the backlog. Validation issues (dangling
// dependencies, duplicate ids) are returned alongside the value, not as
// errors: the scheduler degrades gracefully around them, but they must be
// observable to the caller.
func (fs *FileStore) Load(projectRoot string) (*Backlog, []ValidationIssue, error) {
	path := BacklogPath(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("no backlog found at %s — create one with backlog_init", path)
		}
		return nil, nil, fmt.Errorf("reading backlog: %w", err)
	}

	var b Backlog
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &b, Validate(&b), nil
}

// Save writes the backlog to backlog.json, creating the ratchet/
// directory as needed.
func (fs *FileStore) Save(projectRoot string, b *Backlog) error {
	b.UpdatedAt = timeNow().UTC().Format(timeLayout)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backlog: %w", err)
	}

	if err := os.MkdirAll(DataPath(projectRoot), 0o755); err != nil {
		return fmt.Errorf("creating ratchet directory: %w", err)
	}

	return os.WriteFile(BacklogPath(projectRoot), data, 0o644)
}
