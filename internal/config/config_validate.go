// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validModes = map[string]bool{
	"fast":     true,
	"balanced": true,
	"accurate": true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateZones(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty (use :memory: for an in-memory store)")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	if c.Database.BatchSize < 1 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateZones() error {
	z := c.Zones
	if !validModes[z.DefaultMode] {
		return fmt.Errorf("ZONES_DEFAULT_MODE must be one of: fast, balanced, accurate")
	}
	if z.MinBufferMeters <= 0 || z.MaxBufferMeters < z.MinBufferMeters {
		return fmt.Errorf("zone buffer bounds are invalid: min=%v max=%v", z.MinBufferMeters, z.MaxBufferMeters)
	}
	if z.DefaultBufferMeters < z.MinBufferMeters || z.DefaultBufferMeters > z.MaxBufferMeters {
		return fmt.Errorf("ZONES_DEFAULT_BUFFER_METERS must be between %v and %v", z.MinBufferMeters, z.MaxBufferMeters)
	}
	if z.MaxViewportDegrees <= 0 {
		return fmt.Errorf("ZONES_MAX_VIEWPORT_DEGREES must be positive")
	}
	if z.FastTolerance < z.BalancedTolerance || z.BalancedTolerance < 0 {
		// fast must never be finer than balanced, otherwise mode ordering inverts
		return fmt.Errorf("ZONES_FAST_TOLERANCE must be >= ZONES_BALANCED_TOLERANCE >= 0")
	}
	if z.IngestSimplifyTolerance < 0 {
		return fmt.Errorf("INGEST_SIMPLIFY_TOLERANCE must be >= 0")
	}
	if z.GridMargin < 0 {
		return fmt.Errorf("ZONES_GRID_MARGIN must be >= 0")
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.SnapshotLocator != "" {
		if err := validateLocator(c.Data.SnapshotLocator); err != nil {
			return fmt.Errorf("SNAPSHOT_LOCATOR is invalid: %w", err)
		}
	}
	if c.Data.OSMFile != "" {
		lower := strings.ToLower(c.Data.OSMFile)
		if !strings.HasSuffix(lower, ".osm") && !strings.HasSuffix(lower, ".pbf") && !strings.HasSuffix(lower, ".json") {
			return fmt.Errorf("OSM_FILE must end in .osm, .pbf or .json, got %s", c.Data.OSMFile)
		}
	}
	if c.Data.S3Endpoint != "" && (c.Data.S3AccessKey == "" || c.Data.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENDPOINT is set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" && c.Server.Environment == "production" {
			return fmt.Errorf("CORS_ORIGINS must not contain * in production")
		}
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.Security.SessionMessagesPerSecond <= 0 || c.Security.SessionBurst < 1 {
		return fmt.Errorf("SESSION_MESSAGES_PER_SECOND and SESSION_BURST must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
