package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

const fileSuffix = ".json"

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileDriver persists each key as one JSON file inside a profile directory.
type FileDriver struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileDriver ensures the profile directory exists and returns a handle.
func NewFileDriver(baseDir string) (*FileDriver, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileDriver{baseDir: baseDir}, nil
}

func (d *FileDriver) Get(_ context.Context, key string) ([]byte, error) {
	path, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the value atomically: the payload is written to a temp file in
// the same directory and renamed over the previous value.
func (d *FileDriver) Set(_ context.Context, key string, value []byte) error {
	path, err := d.resolve(key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	tmp, err := os.CreateTemp(d.baseDir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (d *FileDriver) Remove(_ context.Context, key string) error {
	path, err := d.resolve(key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Clear removes every stored key. Files not written by the driver are left alone.
func (d *FileDriver) Clear(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return fmt.Errorf("list store directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(d.baseDir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (d *FileDriver) Close() error { return nil }

// Path exposes the file backing a key (useful for debugging).
func (d *FileDriver) Path(key string) string {
	return filepath.Join(d.baseDir, key+fileSuffix)
}

func (d *FileDriver) resolve(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return d.Path(key), nil
}
