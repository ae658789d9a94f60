// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package config loads clubzones configuration with koanf.
//
// Sources are layered with increasing priority: built-in defaults, an
// optional YAML file, then environment variables. See LoadWithKoanf.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Zones    ZonesConfig    `koanf:"zones"`
	Data     DataConfig     `koanf:"data"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds the embedded DuckDB settings for the spatial store.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`                     // ":memory:" keeps the location set in memory only
	MaxMemory              string `koanf:"max_memory"`               // DuckDB memory limit, e.g. "1GB"
	Threads                int    `koanf:"threads"`                  // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default true
	BatchSize              int    `koanf:"batch_size"`               // rows per ingestion transaction
	EnableHTTPFS           bool   `koanf:"enable_httpfs"`            // load httpfs so snapshots can be read from URLs directly
	SkipIndexes            bool   `koanf:"skip_indexes"`             // tests only

	// ExtensionDirectory overrides DuckDB's extension_directory. Point it at a
	// directory holding {version}/{platform}/spatial.duckdb_extension to load
	// extensions without network access.
	ExtensionDirectory string `koanf:"extension_directory"`
}

// ZonesConfig holds zone calculation defaults and request guards.
type ZonesConfig struct {
	DefaultMode         string        `koanf:"default_mode"`
	DefaultBufferMeters float64       `koanf:"default_buffer_meters"`
	MinBufferMeters     float64       `koanf:"min_buffer_meters"`
	MaxBufferMeters     float64       `koanf:"max_buffer_meters"`
	MaxViewportDegrees  float64       `koanf:"max_viewport_degrees"` // refuse viewports wider or taller than this
	RequestTimeout      time.Duration `koanf:"request_timeout"`

	// Simplification tolerances in degrees applied to calculation outputs.
	FastTolerance     float64 `koanf:"fast_tolerance"`
	BalancedTolerance float64 `koanf:"balanced_tolerance"`

	// IngestSimplifyTolerance is used for the precomputed simplified geometry.
	IngestSimplifyTolerance float64 `koanf:"ingest_simplify_tolerance"`

	// GridMargin widens the grid prefilter by this many 0.01 degree cells on
	// each side of the viewport. Locations are keyed by centroid cell, so a
	// geometry reaching more than GridMargin cells (about 1.1 km per cell at
	// the equator, less in longitude further north) from its centroid into
	// the viewport is pruned. Zero means one cell. Raise it for datasets with
	// large campuses.
	GridMargin int `koanf:"grid_margin"`
}

// DataConfig describes where location data comes from.
type DataConfig struct {
	// SnapshotLocator is a local path, http(s):// URL or s3://bucket/key of a
	// prebuilt parquet snapshot. Empty disables snapshot loading.
	SnapshotLocator string `koanf:"snapshot_locator"`

	// OSMFile is the fallback OSM XML (.osm), OSM PBF (.pbf) or Overpass JSON
	// (.json) file.
	OSMFile string `koanf:"osm_file"`

	CacheDir    string        `koanf:"cache_dir"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	S3Endpoint  string `koanf:"s3_endpoint"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3UseSSL    bool   `koanf:"s3_use_ssl"`
	S3Region    string `koanf:"s3_region"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds CORS and rate limiting settings. The API is read-only
// and anonymous, so there is nothing else to secure.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// SessionMessagesPerSecond throttles calculate messages on a WebSocket session.
	SessionMessagesPerSecond float64 `koanf:"session_messages_per_second"`
	SessionBurst             int     `koanf:"session_burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
