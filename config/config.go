// Package config loads editor and server settings from an optional YAML
// file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/meikuraledutech/pipeline/autowire"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvBackendURL = "PIPELINE_BACKEND_URL"
	EnvAddr       = "PIPELINE_ADDR"
	EnvLogLevel   = "PIPELINE_LOG_LEVEL"
)

// Config holds the settings shared by the server, the CLI and editor sessions.
type Config struct {
	// BackendURL is the base URL of the validation service.
	BackendURL string `yaml:"backend_url" validate:"omitempty,url"`
	// ListenAddr is where the validation service listens.
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	// SubmitTimeout bounds one submission; zero defers to the transport.
	SubmitTimeout time.Duration `yaml:"submit_timeout" validate:"gte=0"`
	// Layout places auto-wired nodes.
	Layout autowire.Layout `yaml:"layout"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BackendURL: "http://localhost:8000",
		ListenAddr: ":8000",
		LogLevel:   "info",
		Layout:     autowire.DefaultLayout(),
	}
}

var validate = validator.New()

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level converts LogLevel to a slog level.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Logger builds a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
}
