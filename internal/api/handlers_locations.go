// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/clubzones/internal/models"
	"github.com/tomtom215/clubzones/internal/validation"
)

const defaultSearchLimit = 20

// Locations returns the sensitive locations intersecting a viewport as
// GeoJSON.
//
// @Summary Sensitive locations in a viewport
// @Tags Locations
// @Produce json
// @Param west query number true "Western longitude"
// @Param south query number true "Southern latitude"
// @Param east query number true "Eastern longitude"
// @Param north query number true "Northern latitude"
// @Success 200 {object} models.APIResponse{data=models.LocationsResponse}
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Failure 503 {object} models.APIResponse "Location data not loaded"
// @Router /locations [get]
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	viewport, apiErr := parseViewport(r)
	if apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	q := validation.LocationsQuery{Viewport: viewport}
	if verr := validation.ValidateLocationsQuery(&q, h.config.Zones); verr != nil {
		respondAPIError(w, r, verr.ToAPIError())
		return
	}

	locs, err := h.engine.Locations(r.Context(), q.Viewport)
	if err != nil {
		respondClassified(w, r, err)
		return
	}

	respondSuccess(w, r, &models.LocationsResponse{
		Features: models.LocationsFeatureCollection(locs),
		Count:    len(locs),
	}, start)
}

// Search finds locations by name.
//
// @Summary Search locations by name
// @Tags Locations
// @Produce json
// @Param q query string true "Name fragment"
// @Param limit query int false "Maximum results (1-100)" default(20)
// @Success 200 {object} models.APIResponse{data=models.SearchResponse}
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Router /search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := validation.SearchQuery{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: getIntParam(r, "limit", defaultSearchLimit),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondAPIError(w, r, verr.ToAPIError())
		return
	}

	results := h.engine.Search(r.Context(), q.Query, q.Limit)
	if results == nil {
		results = []models.SearchResult{}
	}
	respondSuccess(w, r, &models.SearchResponse{
		Query:   q.Query,
		Results: results,
		Count:   len(results),
	}, start)
}

// Stats summarizes the loaded location set.
//
// @Summary Location set statistics
// @Tags Locations
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Statistics}
// @Failure 503 {object} models.APIResponse "Location data not loaded"
// @Router /stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.engine.Statistics(r.Context())
	if err != nil {
		respondClassified(w, r, err)
		return
	}
	respondSuccess(w, r, stats, start)
}
