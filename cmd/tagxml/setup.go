package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hengadev/tagxml"
	"github.com/hengadev/tagxml/providers/hashicorp"
	s3bucket "github.com/hengadev/tagxml/providers/s3"
	"github.com/hengadev/tagxml/providers/sqlite"
)

// loadEnvironment reads a .env file when one is present.
func loadEnvironment(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// resolveConfig loads path if it exists, falls back to the defaults
// otherwise, then applies environment overrides.
func resolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	config.ApplyEnv(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func newLogger(config LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = level
	return zapConfig.Build()
}

// openStore builds the document store selected by config. The returned
// close function releases backend resources.
func openStore(ctx context.Context, config StoreConfig) (tagxml.Store, func() error, error) {
	noClose := func() error { return nil }

	switch config.Backend {
	case BackendS3:
		store, err := s3bucket.NewFromConfig(ctx, config.S3.Bucket, config.S3.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return store, noClose, nil
	case BackendSQLite:
		store, err := sqlite.Open(ctx, config.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case BackendVault:
		store, err := hashicorp.NewKVStoreFromEnv(ctx, config.Vault.Mount)
		if err != nil {
			return nil, nil, err
		}
		return store, noClose, nil
	default:
		return tagxml.NewDirStore(config.Dir), noClose, nil
	}
}
