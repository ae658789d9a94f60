// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

// Statistics summarizes the stored location set.
type Statistics struct {
	Total      int64              `json:"total"`
	ByCategory map[Category]int64 `json:"by_category"`
	Extent     *BoundingBox       `json:"extent,omitempty"` // nil when the store is empty
	Snapshot   bool               `json:"snapshot_loaded"`
}

// SearchResult is a single name search hit.
type SearchResult struct {
	ID         int64    `json:"id"`
	ExternalID int64    `json:"external_id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Lon        float64  `json:"lon"`
	Lat        float64  `json:"lat"`
}

// IngestReport describes the outcome of a raw data ingestion.
type IngestReport struct {
	Inserted int64 `json:"inserted"`
	Failed   int64 `json:"failed"`  // rows rejected during insert or geometry construction
	Skipped  int64 `json:"skipped"` // untagged nodes and dropped way references

	// DurationMS is the wall time of the whole ingestion.
	DurationMS int64 `json:"duration_ms"`
}

// SnapshotResult is the outcome of loading an optimized snapshot. Err is set
// when Loaded is false and a source was attempted.
type SnapshotResult struct {
	Loaded bool  `json:"loaded"`
	Rows   int64 `json:"rows"`
	Err    error `json:"-"`
}
