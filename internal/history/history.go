// Package history records the outcome of recent orchestrator cycles for
// operator visibility via the status command. It is purely observational:
// nothing in the orchestrator, detector, or replacement engine ever reads
// it back, so a corrupt or missing history file can never change what the
// core decides to do.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/relaydeploy/relay/internal/model"
)

// DefaultMaxCycles is the number of recent cycle records kept when a
// caller does not specify one.
const DefaultMaxCycles = 20

// ContainerOutcome is one container's result within a recorded cycle.
type ContainerOutcome struct {
	Name              string `json:"name"`
	ImageReference    string `json:"image_reference"`
	Updated           bool   `json:"updated"`
	Failed            bool   `json:"failed"`
	NewImageReference string `json:"new_image_reference,omitempty"`
	Detail            string `json:"detail,omitempty"`
}

// CycleRecord is one recorded cycle outcome.
type CycleRecord struct {
	Timestamp  time.Time          `json:"timestamp"`
	Checked    int                `json:"checked"`
	Updated    int                `json:"updated"`
	Failed     int                `json:"failed"`
	Containers []ContainerOutcome `json:"containers,omitempty"`
}

// History is the persisted set of recent cycle records.
type History struct {
	Version     string        `json:"version"`
	LastUpdated time.Time     `json:"last_updated"`
	Cycles      []CycleRecord `json:"cycles"`

	mu        sync.RWMutex `json:"-"`
	filePath  string       `json:"-"`
	maxCycles int          `json:"-"`
	modified  bool         `json:"-"`
}

// Load loads history from a JSON file at filePath, or returns an empty
// history if the file does not exist. maxCycles bounds how many records
// RecordCycle retains; DefaultMaxCycles is used if maxCycles <= 0.
func Load(filePath string, maxCycles int) (*History, error) {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}

	h := &History{
		Version:   "1",
		filePath:  filePath,
		maxCycles: maxCycles,
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return h, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is operator-configured, not user input
	if err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", filePath, err)
	}

	h.filePath = filePath
	h.maxCycles = maxCycles
	return h, nil
}

// RecordCycle appends a cycle's outcome, trims to the last maxCycles
// records, and persists the result. A failure to persist is logged by the
// caller, not fatal to the cycle it describes.
func (h *History) RecordCycle(counters model.CycleCounters, containers []ContainerOutcome) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Cycles = append(h.Cycles, CycleRecord{
		Timestamp:  time.Now(),
		Checked:    counters.Checked,
		Updated:    counters.Updated,
		Failed:     counters.Failed,
		Containers: containers,
	})

	if len(h.Cycles) > h.maxCycles {
		h.Cycles = h.Cycles[len(h.Cycles)-h.maxCycles:]
	}
	h.modified = true

	return h.saveUnlocked()
}

// saveUnlocked performs the save operation without acquiring the lock.
// Caller must hold the lock.
func (h *History) saveUnlocked() error {
	if !h.modified || h.filePath == "" {
		return nil
	}

	h.LastUpdated = time.Now()

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history for %s: %w", h.filePath, err)
	}

	dir := filepath.Dir(h.filePath)
	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in directory %s for history %s: %w", dir, h.filePath, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file %s for history %s: %w", tmpPath, h.filePath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file %s for history %s: %w", tmpPath, h.filePath, err)
	}
	_ = tmpFile.Close()

	if err := os.Rename(tmpPath, h.filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file %s to %s: %w", tmpPath, h.filePath, err)
	}

	h.modified = false
	return nil
}

// Recent returns a copy of the most recently recorded cycles, newest last.
func (h *History) Recent() []CycleRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]CycleRecord, len(h.Cycles))
	copy(result, h.Cycles)
	return result
}

// Count returns the number of cycle records currently retained.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Cycles)
}
