// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
database_schema.go - Location Schema

The store holds a single table. Every ingestion replaces it wholesale, so
there are no migrations: a staging table is filled, swapped in for the live
table in one transaction, and only then indexed. A load that fails before the
swap commits leaves the previous dataset untouched. Once the swap commits the
new dataset is live; an index failure after that point is logged and the
store serves the new rows unindexed, since results do not depend on the
indexes. Building the RTREE after the bulk load is much faster than
maintaining it row by row.

Acceleration columns:
  - bbox_xmin/ymin/xmax/ymax: envelope of geom, for the bbox overlap stage
  - grid_x/grid_y: floor(centroid / 0.01), for the coarse prefilter stage
  - simplified_geom: Douglas-Peucker output used by fast/balanced modes
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/clubzones/internal/logging"
)

const (
	locationsTable = "sensitive_locations"
	stagingTable   = "sensitive_locations_staging"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTableSQL returns the DDL for a location table with the given name.
// The staging table used during replacement shares the live table's layout.
func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			external_id BIGINT NOT NULL,
			name VARCHAR,
			category VARCHAR NOT NULL,
			attributes VARCHAR,
			geom GEOMETRY NOT NULL,
			simplified_geom GEOMETRY,
			bbox_xmin DOUBLE NOT NULL,
			bbox_ymin DOUBLE NOT NULL,
			bbox_xmax DOUBLE NOT NULL,
			bbox_ymax DOUBLE NOT NULL,
			grid_x INTEGER NOT NULL,
			grid_y INTEGER NOT NULL
		);`, table)
}

// getIndexQueries returns index creation SQL statements
func (db *DB) getIndexQueries() []string {
	if db.indexQueries != nil {
		return db.indexQueries
	}
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_locations_grid ON sensitive_locations(grid_x, grid_y);`,
		`CREATE INDEX IF NOT EXISTS idx_locations_bbox ON sensitive_locations(bbox_xmin, bbox_xmax, bbox_ymin, bbox_ymax);`,
		`CREATE INDEX IF NOT EXISTS idx_locations_category ON sensitive_locations(category);`,
		// R-tree spatial index; only used when ST_Intersects gets a constant envelope
		`CREATE INDEX IF NOT EXISTS idx_locations_geom ON sensitive_locations USING RTREE (geom);`,
	}
}

// createSchema creates the empty location table
func (db *DB) createSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, createTableSQL(locationsTable)); err != nil {
		return fmt.Errorf("failed to create %s: %w", locationsTable, err)
	}
	return nil
}

// createStaging drops any leftover staging table and creates a fresh one
func (db *DB) createStaging(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		return fmt.Errorf("failed to drop %s: %w", stagingTable, err)
	}
	if _, err := db.conn.ExecContext(ctx, createTableSQL(stagingTable)); err != nil {
		return fmt.Errorf("failed to create %s: %w", stagingTable, err)
	}
	return nil
}

// dropStaging removes the staging table after a failed replacement
func (db *DB) dropStaging() {
	ctx, cancel := schemaContext()
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		logging.Warn().Err(err).Msg("Failed to drop staging table")
	}
}

// swapStaging replaces the live table with the staging table in one
// transaction, then builds indexes on the new live table. It only fails when
// the swap itself fails; the caller may then treat the old dataset as live.
func (db *DB) swapStaging(ctx context.Context) (err error) {
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

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+locationsTable); err != nil {
		return fmt.Errorf("failed to drop %s: %w", locationsTable, err)
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", stagingTable, locationsTable)); err != nil {
		return fmt.Errorf("failed to rename staging table: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table swap: %w", err)
	}

	if idxErr := db.createIndexes(ctx); idxErr != nil {
		logging.Warn().Err(idxErr).Msg("Serving new location set without acceleration indexes")
	}
	return nil
}

// resetSchema drops the location table and re-creates it empty
func (db *DB) resetSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+locationsTable); err != nil {
		return fmt.Errorf("failed to drop %s: %w", locationsTable, err)
	}
	return db.createSchema(ctx)
}

// createIndexes builds the acceleration indexes after a bulk load.
// Skipped when cfg.SkipIndexes is set; results are identical without them.
func (db *DB) createIndexes(ctx context.Context) error {
	if db.cfg != nil && db.cfg.SkipIndexes {
		return nil
	}

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}
	return nil
}

// hasIndex reports whether the named index exists on the location table
func (db *DB) hasIndex(ctx context.Context, name string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM duckdb_indexes() WHERE table_name = ? AND index_name = ?",
		locationsTable, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect indexes: %w", err)
	}
	return n > 0, nil
}
