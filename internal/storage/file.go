package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"invoicer/internal/logger"
)

// FileBackend stores the document as a single file.
type FileBackend struct {
	path string
	log  zerolog.Logger
}

// NewFileBackend returns a backend writing to path. The parent directory is
// created on first save.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("file backend: path is required")
	}
	return &FileBackend{
		path: path,
		log: logger.WithFields(map[string]interface{}{
			"component": "storage-file",
			"path":      path,
		}),
	}, nil
}

// Path returns the document file path.
func (f *FileBackend) Path() string { return f.path }

// Load reads the document file. A missing file yields nil data.
func (f *FileBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.log.Debug().Str("path", f.path).Msg("Document file does not exist yet")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return data, nil
}

// Save writes data to a temporary file and renames it over the document,
// so readers never observe a partial write.
func (f *FileBackend) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary document: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if removeErr := os.Remove(tmpName); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			f.log.Warn().Err(removeErr).Str("path", tmpName).Msg("Failed to remove temporary document")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary document: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace document file: %w", err)
	}

	f.log.Debug().
		Str("path", f.path).
		Int("bytes", len(data)).
		Msg("Document written")
	return nil
}

// Close is a no-op.
func (f *FileBackend) Close() error { return nil }
