package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/tagxml"
)

// Store backends
const (
	BackendDir    = "dir"
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
	BackendVault  = "vault"
)

// Config represents the configuration of the tagxml command
type Config struct {
	Version string      `yaml:"version"`
	Store   StoreConfig `yaml:"store"`
	Log     LogConfig   `yaml:"log"`
}

// StoreConfig selects where documents are kept
type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Dir     string       `yaml:"dir"`
	S3      S3Config     `yaml:"s3"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Vault   VaultConfig  `yaml:"vault"`
}

// S3Config holds the bucket settings of the s3 backend
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// SQLiteConfig holds the database settings of the sqlite backend
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// VaultConfig holds the KV v2 settings of the vault backend. The connection
// itself comes from the VAULT_* environment variables.
type VaultConfig struct {
	Mount string `yaml:"mount"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Store: StoreConfig{
			Backend: BackendDir,
			Dir:     tagxml.DefaultDir,
			SQLite:  SQLiteConfig{Path: tagxml.DefaultSQLitePath},
			Vault:   VaultConfig{Mount: tagxml.DefaultVaultMount},
		},
		Log: LogConfig{Level: "info"},
	}
}

// ApplyEnv overrides settings with the TAGXML_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{tagxml.EnvStore, &c.Store.Backend},
		{tagxml.EnvDir, &c.Store.Dir},
		{tagxml.EnvLogLevel, &c.Log.Level},
		{tagxml.EnvS3Bucket, &c.Store.S3.Bucket},
		{tagxml.EnvS3Prefix, &c.Store.S3.Prefix},
		{tagxml.EnvSQLitePath, &c.Store.SQLite.Path},
		{tagxml.EnvVaultMount, &c.Store.Vault.Mount},
	}
	for _, o := range overrides {
		if value, ok := lookup(o.name); ok && value != "" {
			*o.target = value
		}
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "", BackendDir:
		c.Store.Backend = BackendDir
		if c.Store.Dir == "" {
			c.Store.Dir = tagxml.DefaultDir
		}
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 backend")
		}
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			c.Store.SQLite.Path = tagxml.DefaultSQLitePath
		}
	case BackendVault:
		if c.Store.Vault.Mount == "" {
			c.Store.Vault.Mount = tagxml.DefaultVaultMount
		}
	default:
		return fmt.Errorf("unknown store backend '%s': must be one of [%s, %s, %s, %s]",
			c.Store.Backend, BackendDir, BackendS3, BackendSQLite, BackendVault)
	}
	return nil
}
