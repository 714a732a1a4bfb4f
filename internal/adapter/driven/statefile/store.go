// Package statefile implements the StateStore port as a single JSON
// document on disk.
package statefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
	"github.com/ericfisherdev/commitwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StateStore = (*Store)(nil)

// Store persists TrackedState as an indented JSON document so the file stays
// human-readable and loadable as a whole on the next startup. Saves go
// through a temp-file-and-rename so a concurrent reader never observes a
// partially written document.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path. The file does not
// need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state document. A missing file is not an error
// and yields an empty mapping. An unreadable or unparseable document yields
// an empty mapping and an error wrapping driven.ErrCorruptState.
func (s *Store) Load() (model.TrackedState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.TrackedState{}, nil
		}
		return model.TrackedState{}, fmt.Errorf("reading %s: %v: %w", s.path, err, driven.ErrCorruptState)
	}

	var state model.TrackedState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.TrackedState{}, fmt.Errorf("parsing %s: %v: %w", s.path, err, driven.ErrCorruptState)
	}
	if state == nil {
		state = model.TrackedState{}
	}

	return state, nil
}

// Save atomically replaces the entire state document. The parent directory
// is created on first save.
func (s *Store) Save(state model.TrackedState) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	return nil
}
