package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

var _ Storage = (*File)(nil)

// File keeps one file per key inside a directory. Writes replace the file
// atomically so a reader never sees a half-written value.
type File struct {
	dir  string
	lock sync.Mutex
}

// NewFile creates dir when missing and returns a backend rooted there.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[storage NewFile] create directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	f.lock.Lock()
	defer f.lock.Unlock()

	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[storage File.GetItem] read %s: %w", key, err)
	}
	return string(b), true, nil
}

func (f *File) SetItem(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := atomic.WriteFile(f.path(key), strings.NewReader(value)); err != nil {
		return fmt.Errorf("[storage File.SetItem] write %s: %w", key, err)
	}
	// atomic.WriteFile keeps the mode of a file it replaces
	if err := os.Chmod(f.path(key), 0o600); err != nil {
		return fmt.Errorf("[storage File.SetItem] chmod %s: %w", key, err)
	}
	return nil
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[storage File.RemoveItem] remove %s: %w", key, err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
