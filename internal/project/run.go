// Package project persists scheduling runs and reusable sheet-inventory
// presets to JSON files, the way a CLI
// host would checkpoint work between invocations. The core scheduling
// engine is pure compute (spec §6); this package is purely a host-side
// convenience built on top of it.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/google/uuid"
)

// backupVersion is bumped whenever Run's on-disk shape changes
// incompatibly.
const backupVersion = "1.0.0"

// Run is a persisted scheduling request/result pair: enough to reload
// a past run for inspection, re-export, or comparison.
type Run struct {
	ID        string            `json:"id"`
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	Carpets   []model.Carpet    `json:"carpets"`
	Sheets    []model.SheetSpec `json:"sheets"`
	Options   model.Options     `json:"options"`
	Layouts   []model.Layout    `json:"layouts,omitempty"`
	Unplaced  []model.Carpet    `json:"unplaced,omitempty"`
}

// NewRun creates a Run with a fresh 8-character id and current
// timestamp, ready to be populated with a schedule's outcome.
func NewRun(carpets []model.Carpet, sheets []model.SheetSpec, opts model.Options) Run {
	return Run{
		ID:        uuid.New().String()[:8],
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Carpets:   carpets,
		Sheets:    sheets,
		Options:   opts,
	}
}

// SaveRun writes a Run to path as indented JSON, creating any missing
// parent directories.
func SaveRun(path string, run Run) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating run directory %q: %w", dir, err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run file %q: %w", path, err)
	}
	return nil
}

// LoadRun reads a persisted Run from path.
func LoadRun(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("reading run file %q: %w", path, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("parsing run file %q: %w", path, err)
	}
	if run.Version == "" {
		return Run{}, fmt.Errorf("invalid run file %q: missing version field", path)
	}
	return run, nil
}
