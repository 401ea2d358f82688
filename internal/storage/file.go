package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each slot as <dir>/<key>.json.
// Writes go to a temp file first and are renamed into place, so a failed
// write never leaves a truncated slot behind.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed and returns a FileBackend over it.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot %q: %w", key, err)
	}
	return data, true, nil
}

func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	dest := f.path(key)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := dest + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp slot file: %w", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(value); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync slot %q: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close slot %q: %w", key, err)
	}
	file = nil

	if err := os.Rename(tempPath, dest); err != nil {
		return fmt.Errorf("finalize slot %q: %w", key, err)
	}
	success = true
	return nil
}

func (f *FileBackend) Close() error { return nil }
