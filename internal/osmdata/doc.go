// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package osmdata reads sensitive-location source files into paulmach/osm
// documents for ingestion.
//
// The format is chosen by extension:
//
//	.osm, .xml   OSM XML (osmxml scanner)
//	.pbf         OSM PBF (osmpbf scanner)
//	.json        Overpass API JSON, including "out geom" way geometry
//
// Relations are dropped; only nodes and ways reach the store.
package osmdata
