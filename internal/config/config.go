// Package config provides unified configuration for the Relacore tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration shared by the Relacore command-line tools.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SnapshotDir is the directory for table snapshots
	SnapshotDir string `json:"snapshot_dir" yaml:"snapshot_dir"`

	// Journal configuration
	Journal JournalConfig `json:"journal" yaml:"journal"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// JournalConfig holds mutation journal configuration.
type JournalConfig struct {
	// Enabled controls whether mutations are journaled
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the journal directory
	Dir string `json:"dir" yaml:"dir"`
}

// StorageConfig holds snapshot archival storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/relacore",
		Journal: JournalConfig{Enabled: false},
		Storage: StorageConfig{Type: "local"},
	}
}

// Load reads a configuration file, accepting YAML or JSON by extension, and
// fills unset paths from DataDir.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve fills unset paths from DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/relacore"
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = filepath.Join(c.DataDir, "snapshots")
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = filepath.Join(c.DataDir, "journal")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local", "":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage type s3 requires a bucket")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}
