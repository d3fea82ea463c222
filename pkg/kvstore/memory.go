package kvstore

import (
	"context"
	"sync"
)

// MemoryDriver keeps values in process memory. Used by tests and ephemeral runs.
type MemoryDriver struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryDriver returns an empty in-memory driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{values: make(map[string][]byte)}
}

func (d *MemoryDriver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (d *MemoryDriver) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = append([]byte(nil), value...)
	return nil
}

func (d *MemoryDriver) Remove(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, key)
	return nil
}

func (d *MemoryDriver) Clear(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values = make(map[string][]byte)
	return nil
}

func (d *MemoryDriver) Close() error { return nil }
