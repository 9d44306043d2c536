package config

import (
	"context"
	"time"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	LogConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type ClientConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetAuthedTimeout() time.Duration
}

type LogConfig interface {
	GetLogLevel() string
	GetLogPretty() bool
}

type mainConfig struct {
	EnvVars
	Storage
}

// New loads configuration from the process environment, reading a .env file
// in the working directory first when one exists.
func New(ctx context.Context) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return load(ctx, envconfig.OsLookuper())
}

// NewFromMap builds configuration from an explicit set of variables.
func NewFromMap(ctx context.Context, vars map[string]string) (Config, error) {
	return load(ctx, envconfig.MapLookuper(vars))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg mainConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, autherrors.Wrapf(err, "[config New] failed to process environment")
	}
	return cfg, nil
}
