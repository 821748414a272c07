// Package store is the single writer of the application's durable state.
//
// The state is one document holding every client, invoice and the settings.
// Each public method reads the whole document from the storage backend,
// applies its change and writes the whole document back, so every call is a
// transaction at document granularity. Calls on one Store are serialized by a
// mutex; the Store assumes it is the only writer of its backend.
//
// Routine reads of a corrupt document fall back to an empty default document.
// Imports are checked for shape first and rejected whole when malformed.
//
// Lookup misses are reported as ErrNotFound (wrapped in *Error) and deletes
// of unknown IDs return false. Records failing validation are rejected with
// a *ValidationError carrying the structured result.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"invoicer/internal/logger"
	"invoicer/internal/storage"
)

// Store is the repository for clients, invoices and settings.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps, numbering and status.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a Store persisting through backend.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		log:     logger.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) today() civil.Date {
	return civil.DateOf(s.now())
}

// read loads the document. Callers must hold s.mu.
func (s *Store) read(ctx context.Context) (*Document, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return nil, WrapError("load", err, "backend read failed")
	}
	if len(data) == 0 {
		return DefaultDocument(), nil
	}

	doc := DefaultDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.log.Warn().
			Err(err).
			Int("bytes", len(data)).
			Msg("Stored document is corrupt, falling back to an empty document")
		return DefaultDocument(), nil
	}
	doc.normalize()
	return doc, nil
}

// write persists the document. Callers must hold s.mu.
// An encoding that would not load back is refused, since read would treat it
// as corrupt and the next write would replace it with an empty document.
func (s *Store) write(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return WrapError("save", err, "document encoding failed")
	}
	if err := json.Unmarshal(data, DefaultDocument()); err != nil {
		s.log.Error().
			Err(err).
			Int("bytes", len(data)).
			Msg("Encoded document does not decode, refusing to save")
		return NewError("save", ErrUnreadableDocument, err.Error())
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return WrapError("save", err, "backend write failed")
	}
	return nil
}

// view runs fn against a freshly loaded document without writing it back.
func (s *Store) view(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// mutate runs fn against a freshly loaded document and writes it back when
// fn reports a change. Nothing is written when fn fails.
func (s *Store) mutate(ctx context.Context, fn func(doc *Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.write(ctx, doc)
}

// Document returns a copy of the whole state.
func (s *Store) Document(ctx context.Context) (*Document, error) {
	var out *Document
	err := s.view(ctx, func(doc *Document) error {
		out = doc
		return nil
	})
	return out, err
}

// Reset replaces the state with an empty default document.
func (s *Store) Reset(ctx context.Context) error {
	err := s.mutate(ctx, func(doc *Document) (bool, error) {
		*doc = *DefaultDocument()
		return true, nil
	})
	if err == nil {
		s.log.Info().Msg("All data cleared")
	}
	return err
}
