// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package validation

import (
	"fmt"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/models"
	"github.com/tomtom215/clubzones/internal/zones"
)

// ZonesQuery is a zone calculation request from HTTP or a WebSocket session.
type ZonesQuery struct {
	Viewport     models.BoundingBox `json:"viewport"`
	BufferMeters float64            `json:"buffer" validate:"gt=0"`
	Mode         string             `json:"mode" validate:"zonemode"`
}

// Request converts a validated query.
func (q ZonesQuery) Request() zones.Request {
	return zones.Request{
		BufferMeters: q.BufferMeters,
		Viewport:     q.Viewport,
		Mode:         zones.Mode(q.Mode),
	}
}

// LocationsQuery selects locations intersecting a box.
type LocationsQuery struct {
	Viewport models.BoundingBox
}

// SearchQuery is a name search.
type SearchQuery struct {
	Query string `validate:"required,min=1,max=200"`
	Limit int    `validate:"min=1,max=100"`
}

// ApplyZoneDefaults fills the mode and buffer when the client omitted them.
func ApplyZoneDefaults(q *ZonesQuery, cfg config.ZonesConfig) {
	if q.Mode == "" {
		q.Mode = cfg.DefaultMode
	}
	if q.BufferMeters == 0 {
		q.BufferMeters = cfg.DefaultBufferMeters
	}
}

// ValidateZonesQuery checks the struct tags and the configured buffer and
// viewport limits.
func ValidateZonesQuery(q *ZonesQuery, cfg config.ZonesConfig) *RequestValidationError {
	if verr := ValidateStruct(q); verr != nil {
		return verr
	}

	var errs []ValidationError
	if cfg.MinBufferMeters > 0 && q.BufferMeters < cfg.MinBufferMeters {
		errs = append(errs, boundError("buffer", "gte", cfg.MinBufferMeters, q.BufferMeters,
			"buffer must be greater than or equal to %g meters"))
	}
	if cfg.MaxBufferMeters > 0 && q.BufferMeters > cfg.MaxBufferMeters {
		errs = append(errs, boundError("buffer", "lte", cfg.MaxBufferMeters, q.BufferMeters,
			"buffer must be less than or equal to %g meters"))
	}
	if limit := cfg.MaxViewportDegrees; limit > 0 {
		if span := max(q.Viewport.Width(), q.Viewport.Height()); span > limit {
			errs = append(errs, boundError("viewport", "lte", limit, span,
				"viewport must span at most %g degrees"))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &RequestValidationError{errors: errs}
}

// ValidateLocationsQuery checks the viewport.
func ValidateLocationsQuery(q *LocationsQuery, cfg config.ZonesConfig) *RequestValidationError {
	if verr := ValidateStruct(q); verr != nil {
		return verr
	}
	if limit := cfg.MaxViewportDegrees; limit > 0 {
		if span := max(q.Viewport.Width(), q.Viewport.Height()); span > limit {
			return &RequestValidationError{errors: []ValidationError{
				boundError("viewport", "lte", limit, span, "viewport must span at most %g degrees"),
			}}
		}
	}
	return nil
}

func boundError(field, tag string, bound, value float64, format string) ValidationError {
	return ValidationError{
		field:   field,
		tag:     tag,
		param:   fmt.Sprintf("%g", bound),
		value:   value,
		message: fmt.Sprintf(format, bound),
	}
}
