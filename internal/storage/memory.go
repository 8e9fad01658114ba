package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by a Memory backend told to fail.
var ErrInjected = errors.New("storage: injected failure")

// Memory is an in-process Backend. It can be told to fail reads or
// writes, which is how callers exercise their degradation paths.
type Memory struct {
	mu        sync.Mutex
	data      map[string]string
	failRead  bool
	failWrite bool
	writes    int
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Backend.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return "", false, ErrInjected
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Backend.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrInjected
	}
	m.data[key] = value
	m.writes++
	return nil
}

// Remove implements Backend.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrInjected
	}
	delete(m.data, key)
	return nil
}

// FailReads makes subsequent Get calls fail (or succeed again).
func (m *Memory) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = fail
}

// FailWrites makes subsequent Set and Remove calls fail (or succeed again).
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// Writes returns the number of successful Set calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Raw returns the stored value without going through failure injection.
func (m *Memory) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Put stores a value without counting it as a write, for seeding fixtures.
func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
