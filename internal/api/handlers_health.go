// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/clubzones/internal/models"
)

const readinessTimeout = 2 * time.Second

// HealthLive reports that the process is up. It never touches the store.
//
// @Summary Liveness probe
// @Tags Health
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}, time.Now())
}

// HealthReady reports whether zone calculations can be served.
//
// @Summary Readiness probe
// @Tags Health
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Failure 503 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := &models.HealthStatus{
		Status:         "ready",
		Ready:          h.engine.Ready(),
		SnapshotLoaded: h.engine.SnapshotLoaded(),
		Version:        h.version,
	}

	if err := h.engine.Ping(ctx); err != nil {
		status.Status = "database_unavailable"
		status.Ready = false
	} else if !status.Ready {
		status.Status = "initializing"
	} else if stats, err := h.engine.Statistics(ctx); err == nil && stats != nil {
		status.Locations = stats.Total
	}

	if !status.Ready {
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     status,
			Metadata: models.Metadata{QueryTimeMS: time.Since(start).Milliseconds()},
			Error:    &models.APIError{Code: ErrCodeUnavailable, Message: "Service not ready"},
		})
		return
	}
	respondSuccess(w, r, status, start)
}
