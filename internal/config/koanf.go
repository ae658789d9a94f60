// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/clubzones/config.yaml",
	"/etc/clubzones/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:                   ":memory:",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			BatchSize:              500,
			EnableHTTPFS:           false,
		},
		Zones: ZonesConfig{
			DefaultMode:             "balanced",
			DefaultBufferMeters:     200,
			MinBufferMeters:         50,
			MaxBufferMeters:         500,
			MaxViewportDegrees:      0.5,
			RequestTimeout:          20 * time.Second,
			FastTolerance:           0.0001,
			BalancedTolerance:       0.00002,
			IngestSimplifyTolerance: 0.00005,
			GridMargin:              1,
		},
		Data: DataConfig{
			CacheDir:    os.TempDir(),
			HTTPTimeout: 60 * time.Second,
			S3UseSSL:    true,
		},
		Server: ServerConfig{
			Port:            8420,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			CORSOrigins:              []string{},
			RateLimitRequests:        120,
			RateLimitWindow:          time.Minute,
			SessionMessagesPerSecond: 4,
			SessionBurst:             8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//
//  1. Defaults from defaultConfig
//  2. Optional YAML config file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// The merged result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment cannot leak in.
var envMappings = map[string]string{
	"duckdb_path":                 "database.path",
	"duckdb_max_memory":           "database.max_memory",
	"duckdb_threads":              "database.threads",
	"duckdb_preserve_order":       "database.preserve_insertion_order",
	"ingest_batch_size":           "database.batch_size",
	"duckdb_enable_httpfs":        "database.enable_httpfs",
	"duckdb_extension_directory":  "database.extension_directory",
	"zones_default_mode":          "zones.default_mode",
	"zones_default_buffer_meters": "zones.default_buffer_meters",
	"zones_min_buffer_meters":     "zones.min_buffer_meters",
	"zones_max_buffer_meters":     "zones.max_buffer_meters",
	"zones_max_viewport_degrees":  "zones.max_viewport_degrees",
	"zones_request_timeout":       "zones.request_timeout",
	"zones_fast_tolerance":        "zones.fast_tolerance",
	"zones_balanced_tolerance":    "zones.balanced_tolerance",
	"ingest_simplify_tolerance":   "zones.ingest_simplify_tolerance",
	"zones_grid_margin":           "zones.grid_margin",
	"snapshot_locator":            "data.snapshot_locator",
	"osm_file":                    "data.osm_file",
	"data_cache_dir":              "data.cache_dir",
	"data_http_timeout":           "data.http_timeout",
	"s3_endpoint":                 "data.s3_endpoint",
	"s3_access_key":               "data.s3_access_key",
	"s3_secret_key":               "data.s3_secret_key",
	"s3_use_ssl":                  "data.s3_use_ssl",
	"s3_region":                   "data.s3_region",
	"http_port":                   "server.port",
	"http_host":                   "server.host",
	"http_read_timeout":           "server.read_timeout",
	"http_write_timeout":          "server.write_timeout",
	"http_idle_timeout":           "server.idle_timeout",
	"http_shutdown_timeout":       "server.shutdown_timeout",
	"environment":                 "server.environment",
	"cors_origins":                "security.cors_origins",
	"rate_limit_requests":         "security.rate_limit_requests",
	"rate_limit_window":           "security.rate_limit_window",
	"disable_rate_limit":          "security.rate_limit_disabled",
	"session_messages_per_second": "security.session_messages_per_second",
	"session_burst":               "security.session_burst",
	"log_level":                   "logging.level",
	"log_format":                  "logging.format",
	"log_caller":                  "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
//	DUCKDB_PATH      -> database.path
//	SNAPSHOT_LOCATOR -> data.snapshot_locator
//	HTTP_PORT        -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}
