package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth for the serve mode.
	APIKey string

	// Corpus under validation.
	Root string

	// Run history database; empty disables recording.
	DBPath string

	// Scan pool
	WorkerCount  int
	MaxFileBytes int64

	// Rolling window for parse latency stats.
	StatsWindow time.Duration
}

// fileConfig mirrors Config for the optional YAML overlay. Environment
// variables win over file values.
type fileConfig struct {
	Port         string `yaml:"port"`
	APIKey       string `yaml:"api_key"`
	Root         string `yaml:"root"`
	DBPath       string `yaml:"db_path"`
	WorkerCount  int    `yaml:"worker_count"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
	StatsWindow  string `yaml:"stats_window"`
}

func Load() (Config, error) {
	cfg := Config{
		Port:         "8091",
		WorkerCount:  4,
		MaxFileBytes: 10485760, // 10MB
		StatsWindow:  time.Hour,
	}

	if path := os.Getenv("CORPUSLINT_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("CORPUSLINT_API_KEY", cfg.APIKey)
	cfg.Root = envOr("CORPUSLINT_ROOT", cfg.Root)
	cfg.DBPath = envOr("CORPUSLINT_DB", cfg.DBPath)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxFileBytes = envInt64("MAX_FILE_BYTES", cfg.MaxFileBytes)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxFileBytes < 0 {
		cfg.MaxFileBytes = 0
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.Root != "" {
		cfg.Root = fc.Root
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.WorkerCount > 0 {
		cfg.WorkerCount = fc.WorkerCount
	}
	if fc.MaxFileBytes > 0 {
		cfg.MaxFileBytes = fc.MaxFileBytes
	}
	if fc.StatsWindow != "" {
		d, err := time.ParseDuration(fc.StatsWindow)
		if err != nil {
			return fmt.Errorf("parse stats_window: %w", err)
		}
		cfg.StatsWindow = d
	}
	return nil
}

// ValidateServe checks the settings the HTTP server cannot run without.
func (c Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("CORPUSLINT_API_KEY is required")
	}
	if c.Root == "" {
		return fmt.Errorf("CORPUSLINT_ROOT is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
