package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
)

// Store persists watcher state as a single JSON file.
type Store struct {
	path string
}

// New creates a Store for the given state file path. A leading ~/ expands to
// the user's home directory.
func New(path string) (*Store, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Store{path: path}, nil
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the previous watcher state. A missing file is a normal first
// run, and a corrupt file only costs the diff baseline, so neither fails:
// both come back as an empty state.
func (s *Store) Load() *bill.WatcherState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("state file unreadable, starting from empty state", logger.Fields{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return bill.NewWatcherState()
	}

	var state bill.WatcherState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("state file corrupt, starting from empty state", logger.Fields{
			"path":  s.path,
			"error": err.Error(),
		})
		return bill.NewWatcherState()
	}

	// Maps omitted from the file come back nil.
	if state.Bills == nil {
		state.Bills = make(map[string]bill.Meta)
	}
	if state.SeenIDs == nil {
		state.SeenIDs = make(map[string]bool)
	}

	return &state
}

// Save writes the state atomically: marshal to <path>.tmp, then rename over
// the real file. A crash mid-write leaves the previous state intact.
func (s *Store) Save(state *bill.WatcherState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp state: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // nolint:errcheck
		return fmt.Errorf("renaming state: %w", err)
	}

	return nil
}
