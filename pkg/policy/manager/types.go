package manager

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadEventType represents the type of file system change.
type ReloadEventType int

const (
	// ReloadEventCreate indicates a file was created or renamed into place
	ReloadEventCreate ReloadEventType = iota

	// ReloadEventModify indicates an existing file was written
	ReloadEventModify

	// ReloadEventDelete indicates a file was removed or renamed away
	ReloadEventDelete
)

// String returns a string representation of the event type.
func (t ReloadEventType) String() string {
	switch t {
	case ReloadEventCreate:
		return "create"
	case ReloadEventModify:
		return "modify"
	case ReloadEventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ReloadEvent is a debounced change to a watched file.
type ReloadEvent struct {
	Type      ReloadEventType
	FilePath  string
	Timestamp time.Time
}

func eventType(op fsnotify.Op) ReloadEventType {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ReloadEventDelete
	case op.Has(fsnotify.Create):
		return ReloadEventCreate
	default:
		return ReloadEventModify
	}
}
