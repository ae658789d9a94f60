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
	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
	"github.com/tomtom215/clubzones/internal/models"
)

const defaultBatchSize = 500

// defaultIngestTolerance is used when the store config does not carry one.
const defaultIngestTolerance = 5e-5

const insertLocationQuery = `INSERT INTO ` + stagingTable + ` (
		id, external_id, name, category, attributes,
		geom, simplified_geom,
		bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
		grid_x, grid_y
	) VALUES (?, ?, ?, ?, ?, ST_GeomFromWKB(?::BLOB), ST_GeomFromWKB(?::BLOB), ?, ?, ?, ?, ?, ?)`

// locationRow is a location with its geometry already encoded for insert.
type locationRow struct {
	loc           models.SensitiveLocation
	attributes    string
	geomWKB       []byte
	simplifiedWKB []byte
}

func (r *locationRow) args() []interface{} {
	var name interface{}
	if r.loc.Name != "" {
		name = r.loc.Name
	}
	return []interface{}{
		r.loc.ID, r.loc.ExternalID, name, string(r.loc.Category), r.attributes,
		r.geomWKB, r.simplifiedWKB,
		r.loc.BBox.West, r.loc.BBox.South, r.loc.BBox.East, r.loc.BBox.North,
		r.loc.Cell.X, r.loc.Cell.Y,
	}
}

// Ingest replaces the stored location set with the tagged nodes and ways of
// data. Way node references are resolved against the nodes of the same
// document; unresolved references are dropped and a way left with fewer than
// two points is counted as a failed row. Malformed rows degrade the result
// but never abort it. If ctx is cancelled the previous dataset is kept.
func (db *DB) Ingest(ctx context.Context, data *osm.OSM) (report *models.IngestReport, err error) {
	start := time.Now()
	defer db.observe("ingest", start, &err)

	if !db.spatialAvailable {
		return nil, ErrSpatialUnavailable
	}
	if data == nil {
		return nil, fmt.Errorf("ingest: nil OSM data")
	}
	rows, failed, skipped := buildLocationRows(data, db.SimplifyTolerance())
	report = &models.IngestReport{Failed: failed, Skipped: skipped}

	if err = db.createStaging(ctx); err != nil {
		return nil, err
	}

	batchSize := defaultBatchSize
	if db.cfg != nil && db.cfg.BatchSize > 0 {
		batchSize = db.cfg.BatchSize
	}

	for i := 0; i < len(rows); i += batchSize {
		if err = ctx.Err(); err != nil {
			db.dropStaging()
			return nil, fmt.Errorf("ingest cancelled: %w", err)
		}

		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		inserted, rowFailures := db.insertBatch(ctx, rows[i:end])
		report.Inserted += inserted
		report.Failed += rowFailures
	}

	if err = db.swapStaging(ctx); err != nil {
		db.dropStaging()
		return nil, err
	}
	db.setState(true, false)

	report.DurationMS = time.Since(start).Milliseconds()
	metrics.RecordIngest(report.Inserted, report.Failed, report.Skipped)

	logging.Info().
		Int64("inserted", report.Inserted).
		Int64("failed", report.Failed).
		Int64("skipped", report.Skipped).
		Int64("duration_ms", report.DurationMS).
		Msg("Location set replaced")

	return report, nil
}

// SetSimplifyTolerance sets the Douglas-Peucker tolerance in degrees used for
// the precomputed simplified geometry of subsequent ingestions.
func (db *DB) SetSimplifyTolerance(tolerance float64) {
	db.stateMu.Lock()
	db.simplifyTolerance = tolerance
	db.stateMu.Unlock()
}

// SimplifyTolerance returns the ingestion simplification tolerance.
func (db *DB) SimplifyTolerance() float64 {
	db.stateMu.RLock()
	defer db.stateMu.RUnlock()
	if db.simplifyTolerance <= 0 {
		return defaultIngestTolerance
	}
	return db.simplifyTolerance
}

// insertBatch inserts rows in one transaction. If the transaction fails the
// rows are retried one by one so a single malformed row only costs itself.
func (db *DB) insertBatch(ctx context.Context, rows []*locationRow) (inserted, failed int64) {
	err := db.insertBatchTx(ctx, rows)
	if err == nil {
		return int64(len(rows)), 0
	}
	logging.Warn().Err(err).Int("rows", len(rows)).Msg("Batch insert failed, falling back to row-by-row insert")

	for _, row := range rows {
		if _, err := db.conn.ExecContext(ctx, insertLocationQuery, row.args()...); err != nil {
			logging.Warn().
				Err(err).
				Int64("external_id", row.loc.ExternalID).
				Str("category", string(row.loc.Category)).
				Msg("Failed to insert location")
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}

func (db *DB) insertBatchTx(ctx context.Context, rows []*locationRow) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	var stmt *sql.Stmt
	stmt, err = tx.PrepareContext(ctx, insertLocationQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, nil, "prepared statement")

	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row.args()...); err != nil {
			return fmt.Errorf("failed to insert location %d: %w", row.loc.ExternalID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// buildLocationRows converts OSM elements into encoded rows with ids 1..N.
// Untagged nodes are way vertices and are ignored. Untagged ways are
// relation members and count as skipped, as do dropped way references.
func buildLocationRows(data *osm.OSM, tolerance float64) (rows []*locationRow, failed, skipped int64) {
	index := make(map[osm.NodeID]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		index[n.ID] = n.Point()
	}

	var nextID int64
	add := func(externalID int64, tags map[string]string, geom orb.Geometry) {
		loc := models.NewSensitiveLocation(externalID, tags, geom, tolerance)
		row, err := encodeRow(loc)
		if err != nil {
			logging.Warn().Err(err).Int64("external_id", externalID).Msg("Skipping location with unencodable geometry")
			failed++
			return
		}
		nextID++
		row.loc.ID = nextID
		rows = append(rows, row)
	}

	for _, n := range data.Nodes {
		if len(n.Tags) == 0 {
			continue
		}
		add(int64(n.ID), n.Tags.Map(), n.Point())
	}

	for _, w := range data.Ways {
		if len(w.Tags) == 0 {
			skipped++
			continue
		}

		points := make([]orb.Point, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			if p, ok := index[wn.ID]; ok {
				points = append(points, p)
				continue
			}
			// Overpass "out geom" embeds coordinates in the way itself.
			if wn.Lat != 0 || wn.Lon != 0 {
				points = append(points, orb.Point{wn.Lon, wn.Lat})
				continue
			}
			skipped++
		}

		geom := models.GeometryFromWay(points)
		if geom == nil {
			logging.Warn().
				Int64("way_id", int64(w.ID)).
				Int("resolved_points", len(points)).
				Msg("Way has fewer than two resolvable points")
			failed++
			continue
		}
		add(int64(w.ID), w.Tags.Map(), geom)
	}

	return rows, failed, skipped
}

func encodeRow(loc models.SensitiveLocation) (*locationRow, error) {
	geomWKB, err := encodeGeometry(loc.Geometry)
	if err != nil {
		return nil, err
	}
	simplifiedWKB, err := encodeGeometry(loc.Simplified)
	if err != nil {
		return nil, err
	}
	attrs, err := encodeAttributes(loc.Attributes)
	if err != nil {
		return nil, err
	}
	return &locationRow{loc: loc, attributes: attrs, geomWKB: geomWKB, simplifiedWKB: simplifiedWKB}, nil
}
