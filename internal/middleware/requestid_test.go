// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/clubzones/internal/logging"
)

func serveWithIDs(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	var requestID, correlationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, requestID, correlationID
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	rec, requestID, correlationID := serveWithIDs(t, nil)

	responseID := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if requestID != responseID {
		t.Errorf("context ID %q doesn't match response header ID %q", requestID, responseID)
	}
	if correlationID == "" {
		t.Error("Expected a generated correlation ID in context")
	}
}

func TestRequestID_PreservesClientIDs(t *testing.T) {
	rec, requestID, correlationID := serveWithIDs(t, map[string]string{
		HeaderRequestID:     "existing-request-id-12345",
		HeaderCorrelationID: "map-session-7",
	})

	if got := rec.Header().Get(HeaderRequestID); got != "existing-request-id-12345" {
		t.Errorf("X-Request-ID = %q, want existing ID", got)
	}
	if requestID != "existing-request-id-12345" {
		t.Errorf("context request ID = %q", requestID)
	}
	if correlationID != "map-session-7" {
		t.Errorf("context correlation ID = %q, want map-session-7", correlationID)
	}
}

func TestRequestID_RejectsUnsafeIDs(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"newline", "abc\ndef"},
		{"too long", strings.Repeat("x", maxIDLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, _ := serveWithIDs(t, map[string]string{HeaderRequestID: tt.id})
			if _, err := uuid.Parse(rec.Header().Get(HeaderRequestID)); err != nil {
				t.Errorf("unsafe ID was not replaced: %q", rec.Header().Get(HeaderRequestID))
			}
		})
	}
}
