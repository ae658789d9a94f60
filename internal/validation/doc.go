// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps the validator in a thread-safe singleton with the custom
// rules the API needs and translates failures into the VALIDATION_ERROR
// envelope returned by every endpoint.
//
// # Custom Rules
//
//   - category: comma-separated list of known location categories
//   - zonemode: fast, balanced or accurate
//   - models.BoundingBox: struct-level check that coordinates are in range
//     and that west < east and south < north
//
// # Usage
//
//	type ZonesQuery struct {
//	    Viewport     models.BoundingBox
//	    BufferMeters float64 `validate:"gte=1,lte=5000"`
//	    Mode         string  `validate:"zonemode"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator initializes the validator once; the returned instance caches
// struct metadata and is safe for concurrent use.
package validation
