// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "buffer must be between 50 and 500 meters"
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_INITIALIZED: The location set has not been loaded yet
//   - CALCULATION_CANCELLED: A newer calculation superseded this one
//   - INTERNAL_ERROR: Unexpected failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ZonesResponse is the payload of a zone calculation. Features holds the
// restricted area (omitted when no location matched) and the eligible area,
// each tagged with a "kind" property.
type ZonesResponse struct {
	Features         *geojson.FeatureCollection `json:"features"`
	Mode             string                     `json:"mode"`
	BufferMeters     float64                    `json:"buffer_meters"`
	LocationCount    int                        `json:"location_count"`
	ExcludedCount    int                        `json:"excluded_count"`
	ProcessingTimeMS int64                      `json:"processing_time_ms"`
	FallbackUsed     bool                       `json:"fallback_used"`
	FallbackReason   string                     `json:"fallback_reason,omitempty"`
}

// LocationsResponse is the payload of a viewport locations query.
type LocationsResponse struct {
	Features *geojson.FeatureCollection `json:"features"`
	Count    int                        `json:"count"`
}

// SearchResponse wraps ranked name search hits.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// HealthStatus is returned by the readiness probe.
type HealthStatus struct {
	Status         string `json:"status"`
	Ready          bool   `json:"ready"`
	SnapshotLoaded bool   `json:"snapshot_loaded"`
	Locations      int64  `json:"locations"`
	Version        string `json:"version,omitempty"`
}
