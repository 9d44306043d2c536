package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

const defaultAPIBaseURL = "http://localhost:5000"

type EnvVars struct {
	AppName        string        `env:"APP_NAME, default=Tutor Bot"`
	Env            string        `env:"ENV, default=DEV"`
	APIBaseURL     string        `env:"API_BASE_URL, default=http://localhost:5000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`
	AuthedTimeout  time.Duration `env:"AUTHED_TIMEOUT, default=30s"`
	LogLevel       string        `env:"LOG_LEVEL, default=info"`
	LogPretty      bool          `env:"LOG_PRETTY, default=true"`
}

var (
	_ EnvConfig    = EnvVars{}
	_ ClientConfig = EnvVars{}
	_ LogConfig    = EnvVars{}
)

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

// GetAPIBaseURL returns the backend origin all API paths are resolved against.
// A blank value falls back to the local development backend.
func (e EnvVars) GetAPIBaseURL() string {
	if strings.TrimSpace(e.APIBaseURL) == "" {
		return defaultAPIBaseURL
	}
	return e.APIBaseURL
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	if e.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return e.RequestTimeout
}

func (e EnvVars) GetAuthedTimeout() time.Duration {
	if e.AuthedTimeout <= 0 {
		return 30 * time.Second
	}
	return e.AuthedTimeout
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetLogPretty() bool {
	return e.LogPretty
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return autherrors.Wrapf(err, "[config loadDotEnv] failed to read %s", path)
	}
	return nil
}
