// Package config assembles service configuration from an optional
// config.yaml overlay plus the process environment, with real environment
// variables always winning over file-based defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the service's runtime settings.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	Port        int    `yaml:"port"`

	// IngestQueueSize bounds the background ingest task queue. Not part
	// of the HTTP contract, but still configurable since an operator may
	// need to tune it for a given deployment's load.
	IngestQueueSize int `yaml:"ingest_queue_size"`
	IngestWorkers   int `yaml:"ingest_workers"`

	// MinMatchCount is the matcher's minimum matched-hash threshold per
	// track.
	MinMatchCount int `yaml:"min_match_count"`
}

const (
	defaultPort            = 8085
	defaultIngestQueueSize = 256
	defaultIngestWorkers   = 4
	defaultMinMatchCount   = 5
)

// Load loads a .env file if present, reads the YAML file at yamlPath if one
// is given and present (non-fatal if missing), then layers environment
// variables on top so real env vars always win over file-based defaults.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            defaultPort,
		IngestQueueSize: defaultIngestQueueSize,
		IngestWorkers:   defaultIngestWorkers,
		MinMatchCount:   defaultMinMatchCount,
	}

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", yamlPath, err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}
