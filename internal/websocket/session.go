// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
	"github.com/tomtom215/clubzones/internal/validation"
	"github.com/tomtom215/clubzones/internal/zones"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// sessionIDCounter gives sessions a stable order for fan-out.
var sessionIDCounter atomic.Uint64

// Calculator runs zone calculations with most-recent-wins semantics.
// *zones.Coordinator implements it.
type Calculator interface {
	Calculate(ctx context.Context, req zones.Request, progress zones.ProgressFunc) (zones.Result, error)
	Cancel()
}

// Session is one client connection with its own calculator.
type Session struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	calc    Calculator
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards send against close and last against concurrent updates.
	mu     sync.Mutex
	send   chan Message
	closed bool
	last   *zones.Request
}

func newSession(hub *Hub, conn *websocket.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := sessionIDCounter.Add(1)
	return &Session{
		id:      id,
		hub:     hub,
		conn:    conn,
		calc:    hub.newCalculator(),
		limiter: rate.NewLimiter(hub.cfg.MessagesPerSecond, hub.cfg.Burst),
		ctx:     logging.ContextWithSessionID(ctx, logging.GenerateCorrelationID()),
		cancel:  cancel,
		send:    make(chan Message, sendBuffer),
	}
}

// ID returns the session's identifier.
func (s *Session) ID() uint64 {
	return s.id
}

// enqueue queues msg without blocking. It reports false when the session is
// closed or its buffer is full.
func (s *Session) enqueue(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		metrics.WSErrors.WithLabelValues("send_buffer_full").Inc()
		return false
	}
}

// close stops the calculator and closes the send queue. Only the hub calls it.
func (s *Session) close() {
	s.cancel()
	s.calc.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// readPump decodes client messages until the connection fails.
func (s *Session) readPump() {
	defer func() {
		s.hub.leave(s)
		_ = s.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Uint64("session", s.id).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()
		s.handle(data)
	}
}

func (s *Session) handle(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.enqueue(errorMessage(ErrCodeBadMessage, "message is not valid JSON", nil))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		s.enqueue(Message{Type: MessageTypePong})
	case MessageTypeCalculate:
		if !s.limiter.Allow() {
			metrics.WSErrors.WithLabelValues("rate_limited").Inc()
			s.enqueue(errorMessage(ErrCodeRateLimited, "too many calculate messages", nil))
			return
		}
		req, ok := s.parseRequest(msg.Data)
		if !ok {
			return
		}
		s.mu.Lock()
		s.last = &req
		s.mu.Unlock()
		s.start(req)
	default:
		s.enqueue(errorMessage(ErrCodeBadMessage, "unknown message type", map[string]interface{}{"type": msg.Type}))
	}
}

func (s *Session) parseRequest(data json.RawMessage) (zones.Request, bool) {
	var q validation.ZonesQuery
	if len(data) > 0 {
		if err := json.Unmarshal(data, &q); err != nil {
			s.enqueue(errorMessage(ErrCodeBadMessage, "calculate data is malformed", nil))
			return zones.Request{}, false
		}
	}
	validation.ApplyZoneDefaults(&q, s.hub.cfg.Zones)
	if verr := validation.ValidateZonesQuery(&q, s.hub.cfg.Zones); verr != nil {
		apiErr := verr.ToAPIError()
		s.enqueue(errorMessage(ErrCodeValidation, apiErr.Message, apiErr.Details))
		return zones.Request{}, false
	}
	return q.Request(), true
}

// recalculate reruns the last accepted request, if any.
func (s *Session) recalculate() {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		s.start(*last)
	}
}

// start runs req in the background. The coordinator cancels whichever
// calculation is still running for this session.
func (s *Session) start(req zones.Request) {
	go s.run(req)
}

func (s *Session) run(req zones.Request) {
	progress := func(stage zones.Stage, p zones.Progress) {
		s.enqueue(Message{Type: MessageTypeProgress, Data: ProgressData{
			Stage:     stage,
			Fraction:  p.Fraction,
			Locations: p.Locations,
			ElapsedMS: p.Elapsed.Milliseconds(),
		}})
	}

	res, err := s.calc.Calculate(s.ctx, req, progress)
	if err != nil {
		s.enqueue(calculationError(err))
		return
	}

	switch r := res.(type) {
	case *zones.Success:
		s.enqueue(Message{Type: MessageTypeZones, Data: zones.NewZonesResponse(r)})
	case *zones.FallbackNeeded:
		s.enqueue(Message{Type: MessageTypeFallback, Data: zones.NewZonesResponse(r)})
	case *zones.Cancelled:
		st := r.Stats()
		s.enqueue(Message{Type: MessageTypeCancelled, Data: CancelledData{Mode: string(st.Mode), BufferMeters: st.BufferMeters}})
	}
}

func calculationError(err error) Message {
	switch {
	case errors.Is(err, database.ErrNotInitialized):
		return errorMessage(ErrCodeNotInitialized, "location data is not loaded yet", nil)
	case errors.Is(err, zones.ErrInvalidViewport), errors.Is(err, zones.ErrInvalidMode):
		return errorMessage(ErrCodeValidation, err.Error(), nil)
	default:
		logging.Error().Err(err).Msg("zone calculation failed")
		return errorMessage(ErrCodeInternal, "zone calculation failed", nil)
	}
}

// writePump writes queued messages and keeps the connection alive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to marshal websocket message")
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the session.
func (s *Session) Start() {
	go s.writePump()
	go s.readPump()
}
