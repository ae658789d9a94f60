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

	"github.com/tomtom215/clubzones/internal/models"
)

type categoryCount struct {
	category models.Category
	count    int64
}

// GetStatistics returns the location count, per-category counts and the
// extent of the stored set. Extent is nil for an empty store.
func (db *DB) GetStatistics(ctx context.Context) (stats *models.Statistics, err error) {
	defer db.observe("statistics", time.Now(), &err)

	if err = db.checkReady(); err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		total                  int64
		xmin, ymin, xmax, ymax sql.NullFloat64
	)
	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(bbox_xmin), MIN(bbox_ymin), MAX(bbox_xmax), MAX(bbox_ymax)
		FROM `+locationsTable).Scan(&total, &xmin, &ymin, &xmax, &ymax)
	if err != nil {
		return nil, fmt.Errorf("failed to query location totals: %w", err)
	}

	counts, err := queryAndScan(ctx, db.conn,
		"SELECT category, COUNT(*) FROM "+locationsTable+" GROUP BY category ORDER BY category",
		nil,
		func(rows *sql.Rows) (categoryCount, error) {
			var c categoryCount
			var name string
			if err := rows.Scan(&name, &c.count); err != nil {
				return c, err
			}
			c.category = models.ParseCategory(name)
			return c, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}

	stats = &models.Statistics{
		Total:      total,
		ByCategory: make(map[models.Category]int64, len(counts)),
		Snapshot:   db.IsSnapshotLoaded(),
	}
	for _, c := range counts {
		stats.ByCategory[c.category] += c.count
	}
	if total > 0 && xmin.Valid {
		stats.Extent = &models.BoundingBox{West: xmin.Float64, South: ymin.Float64, East: xmax.Float64, North: ymax.Float64}
	}
	return stats, nil
}
