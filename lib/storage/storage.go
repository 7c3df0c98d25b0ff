package storage

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the storage medium cannot be reached or used
var ErrUnavailable = errors.New("storage unavailable")

// Backend persists a single serialized collection. Read returns nil, nil when
// nothing has been written yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Checker is implemented by backends able to verify, before first use, that
// their medium is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// Check runs the backend's capability check if it has one. A nil backend is
// unavailable.
func Check(ctx context.Context, backend Backend) error {
	if backend == nil {
		return ErrUnavailable
	}
	if checker, ok := backend.(Checker); ok {
		return checker.Check(ctx)
	}
	return nil
}
