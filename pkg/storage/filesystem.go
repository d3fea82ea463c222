package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideArchive is returned for names that resolve outside the archive root.
var ErrOutsideArchive = errors.New("path escapes export archive")

// Archive keeps rendered export files on disk under one directory.
type Archive struct {
	baseDir string
	now     func() time.Time
}

// NewArchive ensures the base directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports directory: %w", err)
	}
	return &Archive{baseDir: baseDir, now: time.Now}, nil
}

// Save writes data under name and returns the archive-relative path.
func (a *Archive) Save(name string, data []byte) (string, error) {
	path, err := a.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare export directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit export file: %w", err)
	}
	return filepath.ToSlash(filepath.Clean(name)), nil
}

// Open returns a read-only handle for a stored file.
func (a *Archive) Open(name string) (*os.File, error) {
	path, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (a *Archive) Delete(name string) error {
	path, err := a.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete export file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files last modified before now-ttl and returns
// their archive-relative names.
func (a *Archive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := a.now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(a.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(a.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	return deleted, nil
}

func (a *Archive) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrOutsideArchive
	}
	return filepath.Join(a.baseDir, clean), nil
}
