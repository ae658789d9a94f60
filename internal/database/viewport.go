// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/clubzones/internal/models"
)

// ViewportOptions selects what QueryInViewport returns.
type ViewportOptions struct {
	// Simplified returns the precomputed simplified geometry instead of the
	// full one. Rows without a simplified geometry fall back to the full one.
	Simplified bool

	// GridMargin widens the grid prefilter by this many cells on each side.
	// Zero means the default of one cell. Rows are keyed by centroid cell, so
	// a geometry extending more than GridMargin cells (0.01 degrees, about
	// 1.1 km of latitude) from its centroid can intersect the viewport and
	// still be pruned by the grid stage.
	GridMargin int
}

// QueryInViewport returns every location whose exact geometry intersects
// bbox. The WHERE clause runs the three filter stages in order:
//  1. grid_x/grid_y range over the viewport cells (grid index)
//  2. bbox column overlap (bbox index)
//  3. ST_Intersects against a literal envelope (RTREE index)
//
// The envelope is formatted into the SQL because DuckDB only plans an RTREE
// index scan for a constant geometry argument.
func (db *DB) QueryInViewport(ctx context.Context, bbox models.BoundingBox, opts ViewportOptions) (locations []models.SensitiveLocation, err error) {
	defer db.observe("viewport_query", time.Now(), &err)

	if err = db.checkReady(); err != nil {
		return nil, err
	}
	if err = bbox.Validate(); err != nil {
		return nil, fmt.Errorf("invalid viewport: %w", err)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	margin := opts.GridMargin
	if margin <= 0 {
		margin = 1
	}
	cells := bbox.GridRange(margin)

	geomExpr := "geom"
	if opts.Simplified {
		geomExpr = "COALESCE(simplified_geom, geom)"
	}

	query := fmt.Sprintf(`
		SELECT
			id, external_id, name, category, attributes,
			ST_AsWKB(%[1]s)::BLOB,
			ST_IsValid(%[1]s),
			bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
			grid_x, grid_y
		FROM %[2]s
		WHERE grid_x BETWEEN ? AND ?
			AND grid_y BETWEEN ? AND ?
			AND bbox_xmax >= ? AND bbox_xmin <= ?
			AND bbox_ymax >= ? AND bbox_ymin <= ?
			AND ST_Intersects(geom, ST_MakeEnvelope(%[3]s, %[4]s, %[5]s, %[6]s))
		ORDER BY id`,
		geomExpr, locationsTable,
		formatCoord(bbox.West), formatCoord(bbox.South), formatCoord(bbox.East), formatCoord(bbox.North))

	args := []interface{}{
		cells.MinX, cells.MaxX,
		cells.MinY, cells.MaxY,
		bbox.West, bbox.East,
		bbox.South, bbox.North,
	}

	locations, err = queryAndScan(ctx, db.conn, query, args, locationScanner(opts.Simplified))
	if err != nil {
		return nil, fmt.Errorf("failed to query viewport: %w", err)
	}
	return locations, nil
}

// locationScanner scans viewport rows. The geometry column holds whichever
// variant the query selected and lands in Simplified or Geometry to match.
func locationScanner(simplified bool) scanFunc[models.SensitiveLocation] {
	return func(rows *sql.Rows) (models.SensitiveLocation, error) {
		loc, geom, err := scanLocationRow(rows)
		if err != nil {
			return loc, err
		}
		if simplified {
			loc.Simplified = geom
		} else {
			loc.Geometry = geom
		}
		return loc, nil
	}
}

func scanLocationRow(rows *sql.Rows) (models.SensitiveLocation, orb.Geometry, error) {
	var (
		loc        models.SensitiveLocation
		name       sql.NullString
		category   string
		attributes sql.NullString
		geomWKB    []byte
		valid      sql.NullBool
	)

	if err := rows.Scan(
		&loc.ID, &loc.ExternalID, &name, &category, &attributes,
		&geomWKB, &valid,
		&loc.BBox.West, &loc.BBox.South, &loc.BBox.East, &loc.BBox.North,
		&loc.Cell.X, &loc.Cell.Y,
	); err != nil {
		return loc, nil, fmt.Errorf("failed to scan location: %w", err)
	}

	geom, err := decodeGeometry(geomWKB)
	if err != nil {
		return loc, nil, fmt.Errorf("location %d: %w", loc.ID, err)
	}

	loc.Name = name.String
	loc.Category = models.ParseCategory(category)
	loc.Attributes = decodeAttributes(attributes.String)
	loc.Valid = valid.Valid && valid.Bool
	return loc, geom, nil
}
