// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package snapshot resolves snapshot locators to local parquet files.

Supported locators:

	/var/lib/clubzones/locations.parquet    local path, used in place
	https://cdn.example.org/locations.parquet  downloaded to the cache dir
	s3://bucket/path/locations.parquet       fetched with the MinIO client

HTTP downloads run behind a gobreaker circuit breaker so a dead CDN is not
hammered on every restart, and use If-Modified-Since against the cached copy.
S3 objects are fetched from the endpoint configured in DataConfig.

A failed fetch is not fatal for the service: the engine falls back to the
OSM source file.
*/
package snapshot
