package state

import (
	"context"
	"errors"
)

// Store loads and saves the project state document.
type Store interface {
	// Load returns the current document, ErrNotFound when there is none,
	// or a *CorruptError when it cannot be decoded.
	Load(ctx context.Context) (*ProjectState, error)

	// Save replaces the document atomically.
	Save(ctx context.Context, s *ProjectState) error
}

// Status classifies the outcome of reading the document.
type Status string

const (
	// StatusPresent means the document was loaded.
	StatusPresent Status = "present"
	// StatusMissing means no document exists.
	StatusMissing Status = "missing"
	// StatusCorrupt means the document exists but is malformed.
	StatusCorrupt Status = "corrupt"
	// StatusUnreadable means the document could not be read at all.
	StatusUnreadable Status = "unreadable"
)

// Snapshot is the resolved result of one Load. State is never nil: when
// the document is absent or unusable it is an empty ProjectState, and
// Status says why.
type Snapshot struct {
	State  *ProjectState
	Status Status
	Err    error
}

// Read loads the document once and classifies the result.
func Read(ctx context.Context, store Store) Snapshot {
	s, err := store.Load(ctx)
	switch {
	case err == nil && s != nil:
		return Snapshot{State: s, Status: StatusPresent}
	case err == nil, errors.Is(err, ErrNotFound):
		return Snapshot{State: &ProjectState{}, Status: StatusMissing}
	case IsCorrupt(err):
		return Snapshot{State: &ProjectState{}, Status: StatusCorrupt, Err: err}
	default:
		return Snapshot{State: &ProjectState{}, Status: StatusUnreadable, Err: err}
	}
}

// Usable reports whether the snapshot holds a real document.
func (s Snapshot) Usable() bool {
	return s.Status == StatusPresent
}

// Degraded reports whether the document exists but could not be used.
func (s Snapshot) Degraded() bool {
	return s.Status == StatusCorrupt || s.Status == StatusUnreadable
}
