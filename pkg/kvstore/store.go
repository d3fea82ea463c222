package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Operation labels reported to the Observer.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Observer receives one callback per store operation.
type Observer interface {
	ObserveStoreOperation(op string, success bool, duration time.Duration)
}

// Store is the process-wide key-value facade. Values are JSON encoded.
// Driver and codec failures are logged and reported as a false/null result;
// they are never returned to the caller.
type Store struct {
	driver   Driver
	logger   *zap.Logger
	observer Observer

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New wraps a driver. Logger and observer are optional.
func New(driver Driver, logger *zap.Logger, observer Observer) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		driver:   driver,
		logger:   logger,
		observer: observer,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get decodes the value stored at key into dest. It reports false when the key
// is missing or the value cannot be read or decoded.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	found, ok := s.Read(ctx, key, dest)
	return found && ok
}

// Read is Get with the two null cases told apart: found is false for a missing
// key, ok is false when the read or decode failed. Read-modify-write callers use
// ok to avoid overwriting a collection they could not load.
func (s *Store) Read(ctx context.Context, key string, dest interface{}) (found bool, ok bool) {
	start := time.Now()
	raw, err := s.driver.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observe(OpGet, true, start)
			return false, true
		}
		s.fail(OpGet, key, err, start)
		return false, false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.fail(OpGet, key, err, start)
		return false, false
	}
	s.observe(OpGet, true, start)
	return true, true
}

// Set encodes value as JSON and stores it under key.
func (s *Store) Set(ctx context.Context, key string, value interface{}) bool {
	start := time.Now()
	raw, err := json.Marshal(value)
	if err != nil {
		s.fail(OpSet, key, err, start)
		return false
	}
	if err := s.driver.Set(ctx, key, raw); err != nil {
		s.fail(OpSet, key, err, start)
		return false
	}
	s.observe(OpSet, true, start)
	return true
}

// Remove deletes key. Removing a missing key succeeds.
func (s *Store) Remove(ctx context.Context, key string) bool {
	start := time.Now()
	if err := s.driver.Remove(ctx, key); err != nil {
		s.fail(OpRemove, key, err, start)
		return false
	}
	s.observe(OpRemove, true, start)
	return true
}

// Clear drops every key.
func (s *Store) Clear(ctx context.Context) bool {
	start := time.Now()
	if err := s.driver.Clear(ctx); err != nil {
		s.fail(OpClear, "*", err, start)
		return false
	}
	s.observe(OpClear, true, start)
	return true
}

// Locker returns the mutex guarding read-modify-write cycles on key. Every
// repository writing a key holds this lock for the whole cycle.
func (s *Store) Locker(key string) sync.Locker {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[key] = mu
	}
	return mu
}

// Close releases the driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) fail(op, key string, err error, start time.Time) {
	s.logger.Error("store operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	s.observe(op, false, start)
}

func (s *Store) observe(op string, success bool, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveStoreOperation(op, success, time.Since(start))
}
