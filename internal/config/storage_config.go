package config

import (
	"os"
	"path/filepath"
)

type StorageConfig interface {
	GetSessionBackend() string
	GetSessionDir() string
	GetSessionDBPath() string
	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Storage struct {
	SessionBackend string `env:"SESSION_BACKEND, default=file"`
	SessionDir     string `env:"SESSION_DIR"`
	SessionDBPath  string `env:"SESSION_DB_PATH"`
	RedisAddr      string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB        int    `env:"REDIS_DB, default=0"`
	RedisPrefix    string `env:"REDIS_PREFIX, default=tutorbot:"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetSessionBackend() string {
	if s.SessionBackend == "" {
		return "file"
	}
	return s.SessionBackend
}

// GetSessionDir returns the directory the file backend keeps its slots in.
// Defaults to ~/.tutorbot, or ./.tutorbot when no home directory is known.
func (s Storage) GetSessionDir() string {
	if s.SessionDir != "" {
		return s.SessionDir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tutorbot"
	}
	return filepath.Join(home, ".tutorbot")
}

func (s Storage) GetSessionDBPath() string {
	if s.SessionDBPath != "" {
		return s.SessionDBPath
	}
	return filepath.Join(s.GetSessionDir(), "session.db")
}

func (s Storage) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Storage) GetRedisDB() int {
	return s.RedisDB
}

func (s Storage) GetRedisPrefix() string {
	return s.RedisPrefix
}
