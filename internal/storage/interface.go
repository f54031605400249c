// Package storage persists analysis snapshots so the dashboard and CLI can
// serve the latest results without re-reading the ledger.
package storage

import (
	"time"

	"github.com/eddiefleurent/wheelhouse/internal/models"
	"github.com/eddiefleurent/wheelhouse/internal/wheel"
)

// Snapshot is the persisted outcome of one analysis pass.
type Snapshot struct {
	GeneratedAt     time.Time                  `json:"generated_at"`
	Summary         wheel.Summary              `json:"summary"`
	Positions       map[string]models.Position `json:"positions"`
	ActiveCycles    []models.WheelCycle        `json:"active_cycles"`
	CompletedCycles []models.WheelCycle        `json:"completed_cycles"`
	OpenLegs        []models.Trade             `json:"open_legs,omitempty"`
	Warnings        []wheel.Warning            `json:"warnings,omitempty"`
}

// Interface defines the contract for snapshot persistence.
//
// Implementations must be safe for concurrent use - the dashboard reads
// snapshots while the refresh loop replaces them.
type Interface interface {
	// Latest returns the most recent snapshot, or nil before the first run.
	Latest() *Snapshot
	// SetLatest replaces the current snapshot, appends its summary to the
	// run history, and persists.
	SetLatest(s *Snapshot) error
	// RunHistory returns the summaries of past runs, oldest first.
	RunHistory() []wheel.Summary

	Save() error
	Load() error
}

// NewStorage creates a new storage implementation (currently JSON-based).
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface
var _ Interface = (*JSONStorage)(nil)
