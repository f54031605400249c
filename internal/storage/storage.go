package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/eddiefleurent/wheelhouse/internal/wheel"
)

// maxRunHistory caps how many run summaries are kept on disk.
const maxRunHistory = 200

// JSONStorage persists snapshots to a single JSON file with atomic renames.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storageData
}

type storageData struct {
	Latest      *Snapshot       `json:"latest"`
	RunHistory  []wheel.Summary `json:"run_history"`
	LastUpdated time.Time       `json:"last_updated"`
}

// NewJSONStorage creates file-backed storage, loading existing data when the
// file is already present.
func NewJSONStorage(filepath string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: filepath,
		data:     &storageData{},
	}

	if _, err := os.Stat(filepath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading storage: %w", err)
		}
	}

	return s, nil
}

// Load reads the snapshot file from disk.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.data)
}

// Save writes the snapshot file via a temp file and atomic rename.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpFile, s.filepath)
}

// Latest returns the most recent snapshot, or nil before the first run.
func (s *JSONStorage) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Latest
}

// SetLatest replaces the current snapshot, records its summary, and persists.
func (s *JSONStorage) SetLatest(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Latest = snap
	s.data.RunHistory = append(s.data.RunHistory, snap.Summary)
	if len(s.data.RunHistory) > maxRunHistory {
		s.data.RunHistory = s.data.RunHistory[len(s.data.RunHistory)-maxRunHistory:]
	}

	return s.saveLocked()
}

// RunHistory returns the summaries of past runs, oldest first.
func (s *JSONStorage) RunHistory() []wheel.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wheel.Summary, len(s.data.RunHistory))
	copy(out, s.data.RunHistory)
	return out
}
