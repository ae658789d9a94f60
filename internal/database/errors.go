// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/tomtom215/clubzones/internal/logging"
)

var (
	// ErrNotInitialized is returned by queries before any dataset was loaded.
	ErrNotInitialized = errors.New("spatial store not initialized")

	// ErrSpatialUnavailable is returned when the spatial extension failed to
	// load and DUCKDB_SPATIAL_OPTIONAL allowed startup anyway.
	ErrSpatialUnavailable = errors.New("spatial extension not available")

	// ErrGeometryUnrepairable is returned when no repair strategy produced a
	// valid non-empty geometry.
	ErrGeometryUnrepairable = errors.New("geometry could not be repaired")

	// ErrTopology wraps GEOS topology failures raised by union or difference.
	ErrTopology = errors.New("geometry topology error")
)

// isTopologyError detects GEOS topology failures from the DuckDB error text.
// The driver does not expose a typed error for them.
func isTopologyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "TopologyException") ||
		strings.Contains(msg, "IllegalArgumentException") ||
		strings.Contains(msg, "side location conflict") ||
		strings.Contains(msg, "non-noded intersection")
}

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, logger *slog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		if logger != nil {
			logger.Error("failed to close resource",
				"type", resourceType,
				"error", err)
		} else {
			logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
		}
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
