package storage

import (
	"context"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

var _ Storage = (*Memory)(nil)

// Memory keeps slots in process memory. Nothing survives a restart. The zero
// value is ready to use.
type Memory struct {
	items  map[string]string
	closed bool
	lock   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.closed {
		return "", false, autherrors.ErrStorageClosed
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return autherrors.ErrStorageClosed
	}
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return autherrors.ErrStorageClosed
	}
	delete(m.items, key)
	return nil
}

// Close drops every slot; later calls fail with ErrStorageClosed.
func (m *Memory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.closed = true
	m.items = nil
	return nil
}
