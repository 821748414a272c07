package storage

import "context"

// MemoryBackend keeps the document in a process-local map.
type MemoryBackend struct {
	blobs map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

// Load returns a copy of the stored document.
func (m *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m.blobs[DocumentKey]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data.
func (m *MemoryBackend) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.blobs[DocumentKey] = append([]byte(nil), data...)
	return nil
}

// Close is a no-op.
func (m *MemoryBackend) Close() error { return nil }
