// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
database_extensions.go - DuckDB Extension Installation

Extensions:
  - spatial: GEOMETRY type, ST_* functions (GEOS backed) and RTREE indexes.
    Required unless DUCKDB_SPATIAL_OPTIONAL=true.
  - httpfs: lets read_parquet read http(s) snapshot URLs in place.
    Loaded only when database.enable_httpfs is set; always optional.

Installation Strategy:
 1. Try INSTALL <extension>
 2. If install fails, try LOAD <extension> (may already be installed)
 3. If load fails, try FORCE INSTALL <extension>
 4. If optional=true and all fail, disable feature gracefully

Environment Variables:
  - DUCKDB_SPATIAL_OPTIONAL=true: Allow startup without spatial (testing only)
  - DUCKDB_EXTENSION_TIMEOUT: hard timeout for extension statements (default 30s)
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tomtom215/clubzones/internal/logging"
)

// extensionTimeout is the hard timeout for extension operations.
// CGO calls don't respect context cancellation, so we need goroutine-based timeouts.
var extensionTimeout = getExtensionTimeout()

// extensionRetryConfig controls retry behavior for extension operations
type extensionRetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

var defaultRetryConfig = extensionRetryConfig{
	MaxRetries:  3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
	BackoffMult: 2.0,
}

// getExtensionTimeout returns the timeout for extension operations
// Configurable via DUCKDB_EXTENSION_TIMEOUT environment variable
func getExtensionTimeout() time.Duration {
	if timeoutStr := os.Getenv("DUCKDB_EXTENSION_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

// duckdbVersion is the DuckDB version used for extension paths.
// Must match the duckdb-go-bindings version in go.mod.
const duckdbVersion = "v1.4.3"

// extensionRoot returns the directory DuckDB installs extensions into.
func (db *DB) extensionRoot() string {
	if db.cfg != nil && db.cfg.ExtensionDirectory != "" {
		return db.cfg.ExtensionDirectory
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".duckdb", "extensions")
}

// isExtensionInstalledLocally checks if an extension file exists in the local DuckDB
// extension directory, so network INSTALL can be skipped for pre-installed extensions.
func isExtensionInstalledLocally(root, extensionName string) bool {
	if root == "" {
		return false
	}

	// DuckDB extension path: {root}/{version}/{platform}/{name}.duckdb_extension
	platform := runtime.GOOS + "_" + runtime.GOARCH
	extPath := filepath.Join(root, duckdbVersion, platform, extensionName+".duckdb_extension")

	_, err := os.Stat(extPath)
	return err == nil
}

type execResult struct {
	err error
}

type queryResult struct {
	value interface{}
	err   error
}

// execWithHardTimeout executes a SQL statement with a goroutine-based hard timeout.
// DuckDB CGO calls don't respect context cancellation, so the timeout is enforced via select.
func (db *DB) execWithHardTimeout(query string) error {
	resultCh := make(chan execResult, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		_, err := db.conn.ExecContext(ctx, query)
		resultCh <- execResult{err: err}
	}()

	select {
	case result := <-resultCh:
		return result.err
	case <-time.After(extensionTimeout):
		return fmt.Errorf("operation timed out after %v", extensionTimeout)
	}
}

// queryRowWithHardTimeout executes a query and scans a single value with a hard timeout
func (db *DB) queryRowWithHardTimeout(query string) (interface{}, error) {
	resultCh := make(chan queryResult, 1)

	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		var result interface{}
		err := db.conn.QueryRowContext(ctx, query).Scan(&result)
		resultCh <- queryResult{value: result, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.value, result.err
	case <-time.After(extensionTimeout):
		return nil, fmt.Errorf("query timed out after %v", extensionTimeout)
	}
}

// execWithRetry executes a SQL statement with retry logic and exponential backoff
// This handles transient network failures when downloading extensions
func (db *DB) execWithRetry(query string, config extensionRetryConfig) error {
	var lastErr error
	delay := config.BaseDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("query", query).
				Msg("Retrying extension operation")
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * config.BackoffMult)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := db.execWithHardTimeout(query)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableExtensionError(err) {
			return err
		}

		logging.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", config.MaxRetries+1).
			Msg("Extension operation failed, will retry")
	}

	return fmt.Errorf("extension operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// isRetryableExtensionError reports timeouts and transient network failures
func isRetryableExtensionError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "temporary failure")
}

// installExtensions installs and loads the DuckDB extensions the store needs.
// Returns error if spatial fails to load unless DUCKDB_SPATIAL_OPTIONAL=true.
func (db *DB) installExtensions() error {
	spatialOptional := os.Getenv("DUCKDB_SPATIAL_OPTIONAL") == "true"

	if db.cfg != nil && db.cfg.ExtensionDirectory != "" {
		if err := db.execWithHardTimeout("SET extension_directory = " + quoteLiteral(db.cfg.ExtensionDirectory) + ";"); err != nil {
			return fmt.Errorf("failed to set extension directory: %w", err)
		}
	}

	if err := db.configureExtensionRepository(); err != nil {
		logging.Warn().Err(err).Msg("Failed to set custom extension repository, will use default")
	}

	if err := db.installSpatial(spatialOptional); err != nil {
		return err
	}

	if db.cfg.EnableHTTPFS {
		if err := db.installHTTPFS(true); err != nil {
			logging.Warn().Err(err).Msg("httpfs unavailable, remote snapshots will be downloaded before loading")
		}
	}

	return nil
}

// configureExtensionRepository sets HTTPS for extension downloads
func (db *DB) configureExtensionRepository() error {
	return db.execWithHardTimeout("SET custom_extension_repository = 'https://extensions.duckdb.org';")
}

// installSpatial installs the spatial extension
func (db *DB) installSpatial(optional bool) error {
	spec := &extensionSpec{
		Name:              "spatial",
		VerifyQuery:       "SELECT ST_AsText(ST_Point(0, 0))",
		AvailabilityField: func(db *DB) *bool { return &db.spatialAvailable },
		WarningMessage:    "Spatial extension unavailable (DUCKDB_SPATIAL_OPTIONAL=true), the location schema will not be created",
	}
	return db.installCoreExtension(spec, optional)
}

// installHTTPFS installs httpfs so read_parquet accepts http(s) URLs
func (db *DB) installHTTPFS(optional bool) error {
	spec := &extensionSpec{
		Name:              "httpfs",
		AvailabilityField: func(db *DB) *bool { return &db.httpfsAvailable },
		WarningMessage:    "httpfs extension unavailable, remote snapshots will be fetched to the cache dir first",
	}
	return db.installCoreExtension(spec, optional)
}
