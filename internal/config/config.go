// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	DBPath         string        `yaml:"db_path"         env:"LEXINOTE_DB"`
	Model          string        `yaml:"model"           env:"LEXINOTE_MODEL"           env-default:"claude-sonnet-4-20250514"`
	MaxTokens      int64         `yaml:"max_tokens"      env:"LEXINOTE_MAX_TOKENS"      env-default:"2048"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"LEXINOTE_REQUEST_TIMEOUT" env-default:"120s"`
	Log            LogConfig     `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LEXINOTE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LEXINOTE_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file path comes from LEXINOTE_CONFIG;
// without it, configuration is ENV + defaults only.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("LEXINOTE_CONFIG")
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks field values after load.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log level must be one of %v, got %q", levels, c.Log.Level)
	}
	return nil
}

// DatabasePath resolves the database location, falling back to a per-user
// default under the home directory.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lexinote", "lexinote.db")
}
