// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// searchQuery ranks exact matches first, then prefix matches, then any
// other substring match; ties sort by lowercased name, then name, then id.
const searchQuery = `
	SELECT
		id, external_id, name, category,
		ST_X(ST_Centroid(geom)), ST_Y(ST_Centroid(geom))
	FROM ` + locationsTable + `
	WHERE name IS NOT NULL
		AND contains(lower(name), lower(?))
	ORDER BY
		CASE
			WHEN lower(name) = lower(?) THEN 0
			WHEN starts_with(lower(name), lower(?)) THEN 1
			ELSE 2
		END,
		lower(name),
		name,
		id
	LIMIT ?`

// SearchByName finds locations whose name contains text, case-insensitively.
// It never fails: an empty needle, an unloaded store or a query error all
// yield an empty slice, and errors are logged.
func (db *DB) SearchByName(ctx context.Context, text string, limit int) []models.SearchResult {
	var err error
	defer db.observe("search", time.Now(), &err)

	needle := strings.TrimSpace(text)
	if needle == "" {
		return []models.SearchResult{}
	}
	limit = normalizeSearchLimit(limit)

	if err = db.checkReady(); err != nil {
		logging.Debug().Err(err).Str("query", needle).Msg("Search before store was ready")
		return []models.SearchResult{}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	results, err := queryAndScan(ctx, db.conn, searchQuery,
		[]interface{}{needle, needle, needle, limit}, scanSearchResult)
	if err != nil {
		logging.Warn().Err(err).Str("query", needle).Msg("Name search failed")
		return []models.SearchResult{}
	}
	if results == nil {
		return []models.SearchResult{}
	}
	return results
}

func normalizeSearchLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}

func scanSearchResult(rows *sql.Rows) (models.SearchResult, error) {
	var (
		r        models.SearchResult
		category string
		lon, lat sql.NullFloat64
	)
	if err := rows.Scan(&r.ID, &r.ExternalID, &r.Name, &category, &lon, &lat); err != nil {
		return r, err
	}
	r.Category = models.ParseCategory(category)
	r.Lon = lon.Float64
	r.Lat = lat.Float64
	return r, nil
}
