package repository

import (
	"context"
	"sync"
)

// MemoryKV keeps values in a map. It backs the "memory" driver and stands in
// for real storage in tests; FailWrites makes every Write return the given
// error.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string]string
	writes int

	FailWrites error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *MemoryKV) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Writes returns the number of successful writes.
func (m *MemoryKV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Seed stores a raw value without counting it as a write.
func (m *MemoryKV) Seed(key, value string) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}
