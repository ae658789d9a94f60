// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package database is the spatial store: an embedded DuckDB database with
// the spatial extension holding the sensitive location set and the GEOS
// backed geometry operations the zone calculator needs.
//
// # Architecture
//
// Core Database Operations:
//   - database.go: lifecycle (connection, extension loading, state flags)
//   - database_extensions.go: spatial and httpfs installation with retries
//   - database_schema.go: table layout, staging swap, index creation
//   - database_utils.go: profiling, context defaults, query metrics
//
// Store Operations:
//   - crud_locations.go: Ingest from OSM nodes and ways in batches
//   - snapshot.go: IngestFromSnapshot, DiscardSnapshot, ExportSnapshot (parquet)
//   - viewport.go: QueryInViewport, the grid -> bbox -> RTREE staged filter
//   - search.go: SearchByName with exact/prefix/substring ranking
//   - stats.go: GetStatistics
//
// Geometry Operations:
//   - repair.go: RepairGeometry (ST_MakeValid, zero buffer, precision reduction)
//   - geometry_ops.go: BufferUnion and EligibleArea
//
// # State
//
// A new store is empty and not ready; every query returns ErrNotInitialized
// until Ingest or IngestFromSnapshot succeeds. Replacement is atomic: rows
// are loaded into a staging table that is swapped in for the live one.
//
// # Thread Safety
//
// Individual calls are safe for concurrent use. Replacing the dataset while
// queries run is serialized by the engine that owns the store.
//
// # Environment Variables
//
//   - DUCKDB_SPATIAL_OPTIONAL=true: start without the spatial extension (tests)
//   - DUCKDB_EXTENSION_TIMEOUT: hard timeout for extension statements
//   - ENABLE_QUERY_PROFILING=true: enable DuckDB detailed profiling
package database
