// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Command server runs the eligible zone engine behind an HTTP and WebSocket
API.

Startup order:

 1. .env (optional) and configuration: koanf defaults, config.yaml, then
    environment variables
 2. Logging: zerolog, json or console
 3. Store: in-process DuckDB with the spatial extension
 4. Engine and event bus
 5. Supervisor tree: dataset loader, event forwarder, WebSocket hub, HTTP
    server

The dataset loader tries the snapshot first and falls back to ingesting the
OSM file. Until it succeeds, zone requests answer 503 NOT_INITIALIZED and
/health/ready reports "initializing". A failed load is retried with the
supervisor's backoff.

# Configuration

Common environment variables:

	SNAPSHOT_LOCATOR   parquet snapshot: path, https:// URL or s3://bucket/key
	OSM_FILE           fallback .osm (XML), .pbf or .json (Overpass) file
	S3_ENDPOINT        S3-compatible endpoint for s3:// locators
	DUCKDB_PATH        ":memory:" (default) or a database file
	HTTP_PORT          listen port, default 8420
	CORS_ORIGINS       comma separated allowed origins
	ZONES_DEFAULT_MODE fast, balanced (default) or accurate
	LOG_LEVEL          trace, debug, info, warn, error

# Snapshot export

	server -export-snapshot berlin.parquet

loads the configured data, writes it as a parquet snapshot for
SNAPSHOT_LOCATOR and exits.

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
within HTTP_SHUTDOWN_TIMEOUT, WebSocket sessions are closed, running
calculations are cancelled, then the engine and the store are closed.
*/
package main
