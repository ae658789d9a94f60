// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package testinfra

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/clubzones/internal/config"
)

const (
	// RequireSpatialEnvVar makes RequireSpatial fail instead of skip.
	RequireSpatialEnvVar = "CLUBZONES_REQUIRE_SPATIAL"

	// ExtensionDirectoryEnvVar names a local DuckDB extension directory.
	ExtensionDirectoryEnvVar = "DUCKDB_EXTENSION_DIRECTORY"
)

var spatialSkips atomic.Int64

// SpatialRequired reports whether spatial tests must not skip.
func SpatialRequired() bool {
	return os.Getenv(RequireSpatialEnvVar) == "true"
}

// RequireSpatial skips the test when the spatial extension is unavailable,
// or fails it when CLUBZONES_REQUIRE_SPATIAL=true.
func RequireSpatial(t testing.TB, available bool) {
	t.Helper()
	if available {
		return
	}
	if SpatialRequired() {
		t.Fatalf("spatial extension not available and %s=true", RequireSpatialEnvVar)
	}
	spatialSkips.Add(1)
	t.Skip("spatial extension not available")
}

// SpatialSkips returns how many tests RequireSpatial skipped so far.
func SpatialSkips() int64 {
	return spatialSkips.Load()
}

// DatabaseConfig returns an in-memory store config for tests, honoring
// DUCKDB_EXTENSION_DIRECTORY.
func DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Path:               ":memory:",
		MaxMemory:          "1GB",
		BatchSize:          500,
		ExtensionDirectory: os.Getenv(ExtensionDirectoryEnvVar),
	}
}

// SpatialMain runs the package's tests with the spatial extension optional
// (unless required) and reports skipped spatial tests on stderr.
func SpatialMain(m *testing.M) {
	if !SpatialRequired() && os.Getenv("DUCKDB_SPATIAL_OPTIONAL") == "" {
		_ = os.Setenv("DUCKDB_SPATIAL_OPTIONAL", "true")
	}
	code := m.Run()
	reportSkips(os.Stderr, SpatialSkips())
	os.Exit(code)
}

func reportSkips(w io.Writer, n int64) {
	if n == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "testinfra: %d spatial test(s) skipped; set %s to load the extension offline or %s=true to fail instead\n",
		n, ExtensionDirectoryEnvVar, RequireSpatialEnvVar)
}
