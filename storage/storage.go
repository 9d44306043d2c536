// Package storage provides the durable key/value slots the session cache is
// persisted in. Each backend behaves like browser localStorage: string values
// addressed by string keys, whole-value reads and writes, idempotent removal.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Storage is a durable string slot store.
type Storage interface {
	// GetItem returns the value stored under key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.GetSessionBackend())) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return NewFile(cfg.GetSessionDir())
	case BackendSQLite:
		return NewSQLite(cfg.GetSessionDBPath())
	case BackendRedis:
		return NewRedis(ctx, RedisConfig{
			Addr:    cfg.GetRedisAddr(),
			DB:      cfg.GetRedisDB(),
			Prefix:  cfg.GetRedisPrefix(),
			Timeout: 5 * time.Second,
		})
	default:
		return nil, autherrors.Wrapf(autherrors.ErrUnsupportedBackend, "[storage Open] %q", cfg.GetSessionBackend())
	}
}

func validateKey(key string) error {
	if key == "" {
		return autherrors.ErrInvalidStorageKey
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_', r == ':':
		default:
			return autherrors.Wrapf(autherrors.ErrInvalidStorageKey, "%q", key)
		}
	}
	return nil
}
