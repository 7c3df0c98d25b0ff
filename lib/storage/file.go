package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores the collection as <dir>/<key>.json
type FileBackend struct {
	Dir string
	Key string
}

// NewFileBackend creates the directory if needed
func NewFileBackend(dir, key string) (*FileBackend, error) {
	if dir == "" || key == "" {
		return nil, fmt.Errorf("%w: file backend needs a directory and a key", ErrUnavailable)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &FileBackend{Dir: dir, Key: key}, nil
}

func (f *FileBackend) path() string {
	return filepath.Join(f.Dir, f.Key+".json")
}

func (f *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path(), err)
	}
	return data, nil
}

// Write replaces the file atomically through a temporary file in the same
// directory.
func (f *FileBackend) Write(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(f.Dir, f.Key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path()); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path(), err)
	}
	return nil
}

// Check verifies the directory exists and is writable
func (f *FileBackend) Check(ctx context.Context) error {
	info, err := os.Stat(f.Dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, f.Dir)
	}
	probe, err := os.CreateTemp(f.Dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
