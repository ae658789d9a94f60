// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/clubzones/internal/models"
)

// unionChunkSize bounds the number of blob parameters in one VALUES list.
const unionChunkSize = 1000

// BufferUnion buffers every geometry by distanceDeg with the given number of
// quadrant segments and returns the union of the buffers. An empty input
// yields nil. GEOS topology failures are returned wrapped in ErrTopology.
func (db *DB) BufferUnion(ctx context.Context, geoms []orb.Geometry, distanceDeg float64, segments int) (union orb.Geometry, err error) {
	defer db.observe("buffer_union", time.Now(), &err)

	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}
	if len(geoms) == 0 {
		return nil, nil
	}

	blobs := make([]interface{}, 0, len(geoms))
	for _, g := range geoms {
		data, err := encodeGeometry(g)
		if err != nil {
			return nil, err
		}
		if data != nil {
			blobs = append(blobs, data)
		}
	}
	if len(blobs) == 0 {
		return nil, nil
	}

	// Large inputs are unioned per chunk, then the chunk results are unioned.
	partials := make([]interface{}, 0, len(blobs)/unionChunkSize+1)
	for i := 0; i < len(blobs); i += unionChunkSize {
		end := i + unionChunkSize
		if end > len(blobs) {
			end = len(blobs)
		}
		part, err := db.unionBlobs(ctx, blobs[i:end], "ST_Buffer(ST_GeomFromWKB(w), ?::DOUBLE, ?::INTEGER)", distanceDeg, segments)
		if err != nil {
			return nil, err
		}
		partials = append(partials, part)
	}

	result := partials[0].([]byte)
	if len(partials) > 1 {
		if result, err = db.unionBlobs(ctx, partials, "ST_GeomFromWKB(w)"); err != nil {
			return nil, err
		}
	}
	return decodeGeometry(result)
}

// unionBlobs runs ST_Union_Agg over expr applied to each blob w. exprArgs
// bind the placeholders of expr, which precede the VALUES list.
func (db *DB) unionBlobs(ctx context.Context, blobs []interface{}, expr string, exprArgs ...interface{}) ([]byte, error) {
	query := fmt.Sprintf(`
		SELECT ST_AsWKB(ST_Union_Agg(%s))::BLOB
		FROM (VALUES %s) AS t(w)`, expr, blobValues(len(blobs)))

	args := make([]interface{}, 0, len(exprArgs)+len(blobs))
	args = append(args, exprArgs...)
	args = append(args, blobs...)

	var out []byte
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		return nil, geometryError(ctx, "union", err)
	}
	return out, nil
}

// EligibleArea subtracts restricted from the viewport rectangle. Both the
// difference and the restricted geometry are simplified with
// ST_SimplifyPreserveTopology when tolerance is positive. A nil restricted
// area yields the viewport polygon itself.
func (db *DB) EligibleArea(ctx context.Context, viewport models.BoundingBox, restricted orb.Geometry, tolerance float64) (eligible, simplified orb.Geometry, err error) {
	defer db.observe("eligible_area", time.Now(), &err)

	if !db.spatialAvailable {
		return nil, nil, ErrSpatialUnavailable
	}
	if restricted == nil {
		return viewport.Polygon(), nil, nil
	}

	data, err := encodeGeometry(restricted)
	if err != nil {
		return nil, nil, err
	}

	eligibleExpr, restrictedExpr := "d", "r"
	if tolerance > 0 {
		t := formatCoord(tolerance)
		eligibleExpr = fmt.Sprintf("ST_SimplifyPreserveTopology(d, %s)", t)
		restrictedExpr = fmt.Sprintf("ST_SimplifyPreserveTopology(r, %s)", t)
	}

	query := fmt.Sprintf(`
		SELECT ST_AsWKB(%s)::BLOB, ST_AsWKB(%s)::BLOB
		FROM (
			SELECT ST_Difference(ST_MakeEnvelope(?::DOUBLE, ?::DOUBLE, ?::DOUBLE, ?::DOUBLE), r) AS d, r
			FROM (SELECT ST_GeomFromWKB(?::BLOB) AS r)
		)`, eligibleExpr, restrictedExpr)

	var eligibleWKB, restrictedWKB []byte
	err = db.conn.QueryRowContext(ctx, query,
		viewport.West, viewport.South, viewport.East, viewport.North, data,
	).Scan(&eligibleWKB, &restrictedWKB)
	if err != nil {
		return nil, nil, geometryError(ctx, "difference", err)
	}

	if eligible, err = decodeGeometry(eligibleWKB); err != nil {
		return nil, nil, err
	}
	if simplified, err = decodeGeometry(restrictedWKB); err != nil {
		return nil, nil, err
	}
	return eligible, simplified, nil
}

// geometryError maps engine failures: cancellation wins, then topology.
func geometryError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if isTopologyError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrTopology, err)
	}
	return fmt.Errorf("failed to compute %s: %w", op, err)
}
