// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package models defines data structures shared by the clubzones packages.

Key Components:

  - SensitiveLocation: a classified OSM point, line or polygon with its
    precomputed bounding box, grid cell and simplified geometry
  - Category: the closed set of location kinds and the tag rules that pick one
  - BoundingBox and GridCell: viewport geometry and the 0.01 degree partition
    used to prune candidates before exact spatial tests
  - Statistics, SearchResult, IngestReport, SnapshotResult: store outputs
  - APIResponse, APIError, Metadata: the HTTP response envelope

Geometries use github.com/paulmach/orb types in WGS84 degrees (lon, lat).
*/
package models
