// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/events"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
)

// ShutdownReason indicates why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// HubConfig holds per-session limits.
type HubConfig struct {
	Zones config.ZonesConfig

	// MessagesPerSecond and Burst throttle calculate messages per session.
	MessagesPerSecond rate.Limit
	Burst             int
}

// Hub tracks sessions and fans dataset events out to them.
type Hub struct {
	cfg           HubConfig
	newCalculator func() Calculator

	sessions   map[*Session]bool
	register   chan *Session
	unregister chan *Session
	mu         sync.RWMutex
}

// NewHub creates a hub. newCalculator is called once per session.
func NewHub(cfg HubConfig, newCalculator func() Calculator) *Hub {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	return &Hub{
		cfg:           cfg,
		newCalculator: newCalculator,
		sessions:      make(map[*Session]bool),
		register:      make(chan *Session),
		unregister:    make(chan *Session),
	}
}

// ErrHubUnavailable is returned by Attach when Serve is not running.
var ErrHubUnavailable = errors.New("websocket hub is not running")

const registerTimeout = 5 * time.Second

// Attach creates a session for an upgraded connection and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn) (*Session, error) {
	s := newSession(h, conn)
	select {
	case h.register <- s:
	case <-time.After(registerTimeout):
		s.close()
		return nil, ErrHubUnavailable
	}
	s.Start()
	return s, nil
}

// leave asks Serve to drop s. It returns once Serve takes it or s is
// already closed.
func (h *Hub) leave(s *Session) {
	select {
	case h.unregister <- s:
	case <-s.ctx.Done():
		// The hub already closed this session during shutdown.
	}
}

// Serve processes registrations until ctx is done, then closes every
// session. It is a suture service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s] = true
			count := len(h.sessions)
			h.mu.Unlock()
			metrics.WSConnections.Inc()
			logging.Info().Uint64("session", s.id).Int("total_sessions", count).Msg("zone session connected")

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				s.close()
				metrics.WSConnections.Dec()
			}
			count := len(h.sessions)
			h.mu.Unlock()
			logging.Info().Uint64("session", s.id).Int("total_sessions", count).Msg("zone session disconnected")
		}
	}
}

// String names the service in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// OnDatasetReplaced notifies every session and recomputes its last request.
func (h *Hub) OnDatasetReplaced(ev events.DatasetReplaced) {
	msg := Message{Type: MessageTypeDatasetReplaced, Data: ev}
	for _, s := range h.sortedSessions() {
		if s.enqueue(msg) {
			s.recalculate()
		}
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// sortedSessions returns sessions ordered by id.
func (h *Hub) sortedSessions() []*Session {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].id < sessions[j].id
	})
	return sessions
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.sessions)
	for s := range h.sessions {
		s.close()
		delete(h.sessions, s)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("sessions_closed", count).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
