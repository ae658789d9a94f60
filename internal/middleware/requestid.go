// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/clubzones/internal/logging"
)

// Header names
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// maxIDLength bounds client supplied IDs before they reach the logs.
const maxIDLength = 128

// RequestID adds request and correlation IDs to the request context and
// echoes the request ID in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := clientID(r.Header.Get(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		if correlationID := clientID(r.Header.Get(HeaderCorrelationID)); correlationID != "" {
			ctx = logging.ContextWithCorrelationID(ctx, correlationID)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientID drops IDs that are too long or contain control characters.
func clientID(id string) string {
	if len(id) > maxIDLength {
		return ""
	}
	for _, c := range id {
		if c < 0x20 || c == 0x7F {
			return ""
		}
	}
	return id
}
