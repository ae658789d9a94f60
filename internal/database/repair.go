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

	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
)

// repairPrecision is the grid size for the last-resort precision reduction.
const repairPrecision = 1e-7

// repairStrategy is one way of turning an invalid geometry valid.
type repairStrategy struct {
	method string
	expr   string // SQL over column g
}

func (db *DB) repairStrategies() []repairStrategy {
	strategies := make([]repairStrategy, 0, 3)
	if db.makeValidAvailable {
		strategies = append(strategies, repairStrategy{method: "make_valid", expr: "ST_MakeValid(g)"})
	}
	return append(strategies,
		repairStrategy{method: "buffer", expr: "ST_Buffer(g, 0)"},
		repairStrategy{method: "reduce_precision", expr: fmt.Sprintf("ST_ReducePrecision(g, %g)", repairPrecision)},
	)
}

// RepairGeometry returns g unchanged when it is valid. Otherwise it tries
// ST_MakeValid (when the spatial build has it), then a zero-width buffer,
// then precision reduction, and returns the first valid non-empty result.
// ErrGeometryUnrepairable is returned when all strategies fail.
func (db *DB) RepairGeometry(ctx context.Context, g orb.Geometry) (repaired orb.Geometry, err error) {
	defer db.observe("repair_geometry", time.Now(), &err)

	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}
	if g == nil {
		return nil, ErrGeometryUnrepairable
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	data, err := encodeGeometry(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeometryUnrepairable, err)
	}

	var valid sql.NullBool
	if err = db.conn.QueryRowContext(ctx, "SELECT ST_IsValid(ST_GeomFromWKB(?::BLOB))", data).Scan(&valid); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		err = fmt.Errorf("%w: %v", ErrGeometryUnrepairable, err)
		return nil, err
	}
	if valid.Valid && valid.Bool {
		return g, nil
	}

	for _, s := range db.repairStrategies() {
		repaired, ok := db.tryRepair(ctx, s, data)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if ok {
			metrics.GeometryRepairs.WithLabelValues(s.method).Inc()
			logging.Debug().Str("method", s.method).Msg("Repaired invalid geometry")
			return repaired, nil
		}
	}

	metrics.GeometryRepairs.WithLabelValues("unrepairable").Inc()
	return nil, ErrGeometryUnrepairable
}

func (db *DB) tryRepair(ctx context.Context, s repairStrategy, data []byte) (orb.Geometry, bool) {
	query := fmt.Sprintf(`
		SELECT ST_AsWKB(r)::BLOB, ST_IsValid(r), ST_IsEmpty(r)
		FROM (SELECT %s AS r FROM (SELECT ST_GeomFromWKB(?::BLOB) AS g))`, s.expr)

	var (
		out   []byte
		valid sql.NullBool
		empty sql.NullBool
	)
	if err := db.conn.QueryRowContext(ctx, query, data).Scan(&out, &valid, &empty); err != nil {
		logging.Debug().Err(err).Str("method", s.method).Msg("Geometry repair strategy failed")
		return nil, false
	}
	if !valid.Bool || empty.Bool {
		return nil, false
	}

	g, err := decodeGeometry(out)
	if err != nil || g == nil {
		return nil, false
	}
	return g, true
}
