package persistence

import (
	"context"
	"sync"
)

// Store persists one serialized snapshot of engine state. Implementations
// cover the two lifetimes the engine needs: durable (cart, survives process
// restarts) and session-scoped (checkout-in-progress, TTL bound).
//
// Load returns the zero value and false when nothing is stored. A snapshot
// that exists but cannot be decoded yields a STATE_CORRUPTION error; callers
// are expected to fall back to defaults and Clear the key rather than fail.
type Store[T any] interface {
	Load(ctx context.Context) (T, bool, error)
	Save(ctx context.Context, snapshot T) error
	Clear(ctx context.Context) error
}

// Memory is a process-local Store used in tests and as a default when no
// backing store is configured.
type Memory[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
}

// NewMemory returns an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

func (m *Memory[T]) Load(_ context.Context) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		var zero T
		return zero, false, nil
	}
	return m.value, true, nil
}

func (m *Memory[T]) Save(_ context.Context, snapshot T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = snapshot
	m.present = true
	return nil
}

func (m *Memory[T]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.present = false
	return nil
}
