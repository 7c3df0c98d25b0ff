package storage

import (
	"context"
)

// MemoryBackend keeps the collection in process memory
type MemoryBackend struct {
	data []byte

	// WriteErr, when set, is returned by every Write
	WriteErr error
	// Writes counts successful writes
	Writes int
}

// NewMemoryBackend returns a backend holding initial, which may be nil
func NewMemoryBackend(initial []byte) *MemoryBackend {
	return &MemoryBackend{data: clone(initial)}
}

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	return clone(m.data), nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = clone(data)
	m.Writes++
	return nil
}

// Bytes returns a copy of the stored collection
func (m *MemoryBackend) Bytes() []byte {
	return clone(m.data)
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
