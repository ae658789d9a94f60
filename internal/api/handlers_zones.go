// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/clubzones/internal/validation"
	"github.com/tomtom215/clubzones/internal/zones"
)

// Zones calculates the eligible and restricted areas of a viewport.
//
// @Summary Calculate eligible zones
// @Description Buffers every sensitive location in the viewport, unions the buffers and subtracts them from the viewport
// @Tags Zones
// @Produce json
// @Param west query number true "Western longitude"
// @Param south query number true "Southern latitude"
// @Param east query number true "Eastern longitude"
// @Param north query number true "Northern latitude"
// @Param buffer query number false "Buffer radius in meters"
// @Param mode query string false "Calculation mode" Enums(fast, balanced, accurate)
// @Success 200 {object} models.APIResponse{data=models.ZonesResponse}
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Failure 409 {object} models.APIResponse "Superseded by a newer calculation"
// @Failure 503 {object} models.APIResponse "Location data not loaded"
// @Failure 504 {object} models.APIResponse "Calculation timed out"
// @Router /zones [get]
func (h *Handler) Zones(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	viewport, apiErr := parseViewport(r)
	if apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	buffer, apiErr := getFloatParam(r, "buffer", 0)
	if apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}

	q := validation.ZonesQuery{
		Viewport:     viewport,
		BufferMeters: buffer,
		Mode:         r.URL.Query().Get("mode"),
	}
	validation.ApplyZoneDefaults(&q, h.config.Zones)
	if verr := validation.ValidateZonesQuery(&q, h.config.Zones); verr != nil {
		respondAPIError(w, r, verr.ToAPIError())
		return
	}

	ctx := r.Context()
	if timeout := h.config.Zones.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := h.engine.Calculate(ctx, q.Request(), nil)
	if err != nil {
		respondClassified(w, r, err)
		return
	}

	switch res.(type) {
	case *zones.Success, *zones.FallbackNeeded:
		respondSuccess(w, r, zones.NewZonesResponse(res), start)
	case *zones.Cancelled:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "Zone calculation timed out", nil)
			return
		}
		respondError(w, r, http.StatusConflict, ErrCodeCancelled, "Calculation superseded by a newer request", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}
