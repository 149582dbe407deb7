// Package config holds process-wide harness configuration.
//
// A HarnessConfig is constructed once at startup — either from
// ratchet/config.json under the project root or from defaults when no
// file exists — and is read-only thereafter.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DilaraHst/ratchet/internal/backlog"
)

const (
	// ConfigFile is the filename under the ratchet/ data dir.
	ConfigFile = "config.json"

	// DefaultRotationThresholdKB is the progress-log size past which an
	// append triggers rotation.
	DefaultRotationThresholdKB = 50
	// DefaultKeepEntries is how many recent progress entries a rotation
	// keeps in the live file.
	DefaultKeepEntries = 100
)

// HarnessConfig is the configuration surface the harness consumes.
type HarnessConfig struct {
	// DefaultQualityGates applies to features that carry no gates of
	// their own. Nil means no default policy.
	DefaultQualityGates *backlog.QualityGates `json:"default_quality_gates,omitempty"`

	ProgressRotationThresholdKB int `json:"progress_rotation_threshold_kb"`
	ProgressKeepEntries         int `json:"progress_keep_entries"`
}

// Default returns a HarnessConfig with all defaults applied.
func Default() HarnessConfig {
	return HarnessConfig{
		ProgressRotationThresholdKB: DefaultRotationThresholdKB,
		ProgressKeepEntries:         DefaultKeepEntries,
	}
}

// Path returns the absolute path to a project's config.json.
func Path(projectRoot string) string {
	return filepath.Join(backlog.DataPath(projectRoot), ConfigFile)
}

// Load reads the harness config for a project. A missing file is not an
// error — it means defaults. Zero or negative numeric fields in the file
// also fall back to their defaults.
func Load(projectRoot string) (HarnessConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", Path(projectRoot), err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parsing %s: %w", Path(projectRoot), err)
	}

	if cfg.ProgressRotationThresholdKB <= 0 {
		cfg.ProgressRotationThresholdKB = DefaultRotationThresholdKB
	}
	if cfg.ProgressKeepEntries <= 0 {
		cfg.ProgressKeepEntries = DefaultKeepEntries
	}
	return cfg, nil
}

// GatesFor resolves the effective quality gates for a feature: the
// feature's own gates when present, otherwise the harness default, which
// may itself be nil (nothing enforced).
func (c HarnessConfig) GatesFor(f *backlog.Feature) *backlog.QualityGates {
	if f != nil && f.QualityGates != nil {
		return f.QualityGates
	}
	return c.DefaultQualityGates
}
