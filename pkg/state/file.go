package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and decodes the document.
func (f *FileStore) Load(ctx context.Context) (*ProjectState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Operation: "load", Path: f.path, Cause: err}
	}
	return decode(f.path, data)
}

// Save writes the document to a temporary file next to the target, syncs
// it and renames it into place.
func (f *FileStore) Save(ctx context.Context, s *ProjectState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &StoreError{Operation: "save", Path: f.path, Cause: err}
	}
	data = append(data, '\n')

	if err := writeAtomic(f.path, data); err != nil {
		return &StoreError{Operation: "save", Path: f.path, Cause: err}
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// decode parses a document. Anything other than a JSON object is corrupt.
func decode(path string, data []byte) (*ProjectState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &CorruptError{Path: path, Cause: errors.New("document is not a JSON object")}
	}

	var s ProjectState
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, &CorruptError{Path: path, Cause: err}
	}
	return &s, nil
}
