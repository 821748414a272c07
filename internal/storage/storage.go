// Package storage persists the application state as a single opaque blob.
//
// A Backend knows nothing about invoices or clients: it loads and saves the
// serialized whole-state document stored under DocumentKey. Supported backends:
//   - memory: process-local map, used by tests and throwaway sessions
//   - file: a JSON file on disk, replaced atomically on every save
//   - sqlite / postgres: a single row in a gorm-managed table
//
// Backends are not safe for concurrent writers; the store serializes access.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DocumentKey is the fixed key the whole-state document is stored under.
const DocumentKey = "invoicer-state"

// Backend loads and saves the whole-state document.
type Backend interface {
	// Load returns the stored document, or nil data when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindFile     Kind = "file"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// ErrUnknownBackend is returned by Open for an unsupported Kind.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Options selects and configures a backend.
type Options struct {
	Kind Kind

	// Path is the document file for KindFile.
	Path string

	// DSN is the database connection string for KindSQLite and KindPostgres.
	DSN string
}

// ParseKind normalizes a backend name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindMemory, KindFile, KindSQLite, KindPostgres:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Open builds the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindMemory:
		return NewMemoryBackend(), nil
	case KindFile:
		return NewFileBackend(opts.Path)
	case KindSQLite:
		return OpenSQLite(ctx, opts.DSN)
	case KindPostgres:
		return OpenPostgres(ctx, opts.DSN)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
}
