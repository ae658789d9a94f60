// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/models"
	ws "github.com/tomtom215/clubzones/internal/websocket"
	"github.com/tomtom215/clubzones/internal/zones"
)

// Engine is the part of *engine.Engine the handlers use.
type Engine interface {
	Calculate(ctx context.Context, req zones.Request, progress zones.ProgressFunc) (zones.Result, error)
	Locations(ctx context.Context, bbox models.BoundingBox) ([]models.SensitiveLocation, error)
	Search(ctx context.Context, text string, limit int) []models.SearchResult
	Statistics(ctx context.Context) (*models.Statistics, error)
	Ready() bool
	SnapshotLoaded() bool
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade
//   - handlers_zones.go: zone calculation
//   - handlers_locations.go: locations, search and statistics
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	engine    Engine
	hub       *ws.Hub
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler creates a handler. hub may be nil, in which case the
// WebSocket endpoint answers 503.
func NewHandler(eng Engine, hub *ws.Hub, cfg *config.Config, version string) *Handler {
	return &Handler{
		engine:    eng,
		hub:       hub,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// CORS allow list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Legitimate browser WebSockets always include Origin.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// ZonesWebSocket upgrades to an interactive zone session.
//
// @Summary Interactive zone session
// @Description Client sends calculate messages; the server streams progress and the result of the latest request
// @Tags Zones
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse "WebSocket hub not available"
// @Router /zones/ws [get]
func (h *Handler) ZonesWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Debug().Err(err).Msg("WebSocket upgrade error")
		return
	}

	if _, err := h.hub.Attach(conn); err != nil {
		logging.Warn().Err(err).Msg("WebSocket session not attached")
		_ = conn.Close()
	}
}
