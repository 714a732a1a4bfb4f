package driven

import (
	"errors"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// ErrCorruptState indicates the persisted state document exists but could
// not be read or parsed. Callers fall back to an empty mapping for the
// current run and log the condition; the document on disk is left untouched
// until the next successful save.
var ErrCorruptState = errors.New("corrupt state document")

// StateStore defines the driven port for persisting tracked commit state.
// The store is the sole writer of its backing document.
type StateStore interface {
	// Load returns the persisted state, or an empty mapping if none exists.
	// A document that exists but cannot be parsed yields an empty mapping
	// and an error wrapping ErrCorruptState.
	Load() (model.TrackedState, error)

	// Save atomically replaces the entire persisted document, so a
	// concurrent reader never observes a partial write.
	Save(state model.TrackedState) error
}
