package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/checklist/internal/logging"
)

// Config holds the checklist client settings.
type Config struct {
	Endpoint       string        `validate:"required,url"`
	RequestTimeout time.Duration `validate:"gt=0,lte=5m"`
	PollInterval   time.Duration `validate:"gte=0"`
	RateLimit      float64       `validate:"gte=0"`
	LogDir         string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
}

const (
	defaultConfigPath     = "~/.config/checklist/config.toml"
	defaultEndpoint       = "http://127.0.0.1:8080/v1/graphql"
	defaultRequestTimeout = 5 * time.Second
	defaultLogDir         = "~/.local/share/checklist/logs"
	defaultLogLevel       = "info"
)

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Endpoint:       defaultEndpoint,
		RequestTimeout: defaultRequestTimeout,
		LogDir:         mustExpand(defaultLogDir),
		LogLevel:       defaultLogLevel,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Endpoint       string  `toml:"endpoint"`
		RequestTimeout string  `toml:"request_timeout"`
		PollInterval   string  `toml:"poll_interval"`
		RateLimit      float64 `toml:"rate_limit"`
		LogDir         string  `toml:"log_dir"`
		LogLevel       string  `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if !strings.Contains(cfg.Endpoint, "://") {
		cfg.Endpoint = "http://" + cfg.Endpoint
	}

	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, 0); err != nil {
		return Config{}, err
	}
	cfg.RateLimit = raw.RateLimit

	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogPath returns the path to the client log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return logging.Path(mustExpand(defaultLogDir))
	}
	return logging.Path(c.LogDir)
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
