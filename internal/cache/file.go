package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// FileStore keeps the cache in a single JSON file.
type FileStore struct {
	path   string
	logger *logging.Logger
}

// NewFileStore returns a store backed by path. The parent directory is
// created on the first Save.
func NewFileStore(path string, logger *logging.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With("component", "cache", "backend", "file"),
	}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) ([]target.Target, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("reading cache failed", "path", s.path, "error", err)
		}
		return nil, false
	}

	targets, dropped, err := decode(data)
	if err != nil {
		s.logger.Debug("cache is corrupt", "path", s.path, "error", err)
		return nil, false
	}
	if dropped > 0 {
		s.logger.Debug("dropped invalid cache entries", "path", s.path, "dropped", dropped)
	}
	if len(targets) == 0 {
		return nil, false
	}

	return targets, true
}

// Save implements Store. The previous file stays intact until the new
// content is fully written.
func (s *FileStore) Save(_ context.Context, targets []target.Target) {
	data, err := encode(targets)
	if err != nil {
		s.logger.Debug("encoding cache failed", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		s.logger.Debug("creating cache directory failed", "path", s.path, "error", err)
		return
	}

	if err := atomicWriteFile(s.path, data); err != nil {
		s.logger.Debug("writing cache failed", "path", s.path, "error", err)
	}
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("removing cache failed", "path", s.path, "error", err)
	}
}

// atomicWriteFile writes data to a temp file beside path and renames it
// over path. On failure path is left untouched and the temp file removed.
func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lights-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
