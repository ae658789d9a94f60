// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
	"github.com/tomtom215/clubzones/internal/models"
)

// snapshotColumns is the parquet layout shared by ExportSnapshot and
// IngestFromSnapshot. Geometry columns are WKB blobs.
const snapshotColumns = `id, external_id, name, category, attributes,
		geom, simplified_geom,
		bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
		grid_x, grid_y`

const loadSnapshotQuery = `INSERT INTO ` + stagingTable + ` (` + snapshotColumns + `)
	SELECT
		id, external_id, name, category, attributes,
		ST_GeomFromWKB(geom::BLOB),
		CASE WHEN simplified_geom IS NULL THEN NULL ELSE ST_GeomFromWKB(simplified_geom::BLOB) END,
		bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
		grid_x, grid_y
	FROM read_parquet(%s)`

// IngestFromSnapshot replaces the location set with the rows of a prebuilt
// parquet snapshot. Precomputed columns are loaded unchanged. Failures are
// reported in the result, never as a panic; the previous dataset is kept
// when loading fails.
func (db *DB) IngestFromSnapshot(ctx context.Context, path string) (result models.SnapshotResult) {
	start := time.Now()
	var err error
	defer db.observe("snapshot_load", start, &err)
	defer func() {
		status := "loaded"
		if !result.Loaded {
			status = "failed"
		}
		metrics.SnapshotLoads.WithLabelValues(status).Inc()
	}()

	if err = db.checkSnapshotSource(path); err != nil {
		return models.SnapshotResult{Err: err}
	}

	if err = db.createStaging(ctx); err != nil {
		return models.SnapshotResult{Err: err}
	}

	if _, err = db.conn.ExecContext(ctx, fmt.Sprintf(loadSnapshotQuery, quoteLiteral(path))); err != nil {
		db.dropStaging()
		err = fmt.Errorf("failed to read snapshot %s: %w", path, err)
		logging.Warn().Err(err).Msg("Snapshot load failed")
		return models.SnapshotResult{Err: err}
	}

	var rows int64
	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+stagingTable).Scan(&rows); err != nil {
		db.dropStaging()
		return models.SnapshotResult{Err: fmt.Errorf("failed to count snapshot rows: %w", err)}
	}

	if err = db.swapStaging(ctx); err != nil {
		db.dropStaging()
		return models.SnapshotResult{Err: err}
	}
	db.setState(true, true)
	metrics.StoredLocations.Set(float64(rows))

	logging.Info().
		Str("path", path).
		Int64("rows", rows).
		Dur("duration", time.Since(start)).
		Msg("Snapshot loaded")

	return models.SnapshotResult{Loaded: true, Rows: rows}
}

// checkSnapshotSource rejects sources read_parquet cannot open.
func (db *DB) checkSnapshotSource(path string) error {
	if !db.spatialAvailable {
		return ErrSpatialUnavailable
	}
	if path == "" {
		return errors.New("snapshot path is empty")
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if !db.httpfsAvailable {
			return fmt.Errorf("snapshot %s is remote but httpfs is not loaded", path)
		}
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("snapshot unavailable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("snapshot path %s is a directory", path)
	}
	return nil
}

// DiscardSnapshot drops the current dataset and leaves an empty, not ready
// store. Queries return ErrNotInitialized until the next ingestion.
func (db *DB) DiscardSnapshot(ctx context.Context) error {
	if !db.spatialAvailable {
		return ErrSpatialUnavailable
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err := db.resetSchema(ctx); err != nil {
		return fmt.Errorf("failed to discard dataset: %w", err)
	}
	db.setState(false, false)
	metrics.StoredLocations.Set(0)

	logging.Info().Msg("Dataset discarded")
	return nil
}

// ExportSnapshot writes the current location set to a ZSTD compressed
// parquet file in the layout IngestFromSnapshot reads.
func (db *DB) ExportSnapshot(ctx context.Context, outputPath string) (err error) {
	defer db.observe("snapshot_export", time.Now(), &err)

	if err = db.checkReady(); err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	exportQuery := `
		COPY (
			SELECT
				id, external_id, name, category, attributes,
				ST_AsWKB(geom)::BLOB AS geom,
				CASE WHEN simplified_geom IS NULL THEN NULL ELSE ST_AsWKB(simplified_geom)::BLOB END AS simplified_geom,
				bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
				grid_x, grid_y
			FROM ` + locationsTable + `
			ORDER BY grid_x, grid_y, id
		) TO ` + quoteLiteral(outputPath) + ` (
			FORMAT PARQUET,
			COMPRESSION 'ZSTD'
		)`

	if _, err = db.conn.ExecContext(ctx, exportQuery); err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	return nil
}
