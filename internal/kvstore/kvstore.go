// Package kvstore provides a small opaque key-value persistence primitive.
//
// The store is used for host state that must survive process restarts, such
// as the reference to the last selected native directory. Keys are plain
// strings; values are treated as opaque strings with no schema imposed by
// this package.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Get and Delete when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is a string-keyed get/set/delete store.
// Implementations provide at-least get/set/delete semantics; no
// read-modify-write atomicity is guaranteed across callers.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key returns ErrKeyNotFound.
	Delete(ctx context.Context, key string) error
}

// Memory is an in-memory Store, primarily for tests.
// It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

var _ Store = (*Memory)(nil)

// Get returns the value for key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return ErrKeyNotFound
	}
	delete(m.values, key)
	return nil
}
