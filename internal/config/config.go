// Package config loads recollect's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultAPIKeyEnv   = "RECOLLECT_API_KEY"
	DefaultPageLimit   = 10
	MaxPageLimit       = 100
	DefaultVaultPath   = "vault"
	DefaultStoragePath = ".recollect/recollect.db"

	// StartDateFormat is the layout for sync.start_date.
	StartDateFormat = "2006-01-02"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Vault   VaultConfig   `yaml:"vault"`
	Storage StorageConfig `yaml:"storage"`
	Sync    SyncConfig    `yaml:"sync"`
}

type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	PageLimit int    `yaml:"page_limit"`

	// Resolved from the environment at load time, never stored in the file.
	APIKey string `yaml:"-"`
}

type VaultConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type SyncConfig struct {
	// StartDate is the ISO date lower bound for lifelog fetches. When empty,
	// the last successful sync recorded in the state store is used.
	StartDate string `yaml:"start_date"`

	// Redact lists regex patterns scrubbed from records before writing.
	Redact []string `yaml:"redact"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and
// validates. A missing API key is not a load error; sync operations guard
// for it themselves so inspection commands still work without a key.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.APIKeyEnv == "" {
		cfg.API.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.API.PageLimit == 0 {
		cfg.API.PageLimit = DefaultPageLimit
	}
	if cfg.Vault.Path == "" {
		cfg.Vault.Path = DefaultVaultPath
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
}

func resolveEnv(cfg *Config) {
	if cfg.API.APIKeyEnv != "" {
		cfg.API.APIKey = os.Getenv(cfg.API.APIKeyEnv)
	}
}

func validate(cfg *Config) error {
	base := strings.TrimSpace(cfg.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url: %q is not an absolute URL", cfg.API.BaseURL)
	}

	if cfg.API.PageLimit < 1 || cfg.API.PageLimit > MaxPageLimit {
		return fmt.Errorf("api.page_limit: %d out of range [1, %d]", cfg.API.PageLimit, MaxPageLimit)
	}

	if cfg.Sync.StartDate != "" {
		if _, err := time.Parse(StartDateFormat, cfg.Sync.StartDate); err != nil {
			return fmt.Errorf("sync.start_date: %w", err)
		}
	}

	return nil
}
