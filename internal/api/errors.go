// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/engine"
	"github.com/tomtom215/clubzones/internal/zones"
)

// Error codes for API responses
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotInitialized = "NOT_INITIALIZED"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrCodeCancelled      = "CALCULATION_CANCELLED"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeRateLimited    = "TOO_MANY_REQUESTS"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// classifyError maps engine and store errors to a status and code.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, database.ErrNotInitialized):
		return http.StatusServiceUnavailable, ErrCodeNotInitialized, "Location data is not loaded yet"
	case errors.Is(err, engine.ErrEngineClosed):
		return http.StatusServiceUnavailable, ErrCodeUnavailable, "Service is shutting down"
	case errors.Is(err, zones.ErrInvalidViewport), errors.Is(err, zones.ErrInvalidMode):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}
