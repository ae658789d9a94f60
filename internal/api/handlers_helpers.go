// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/clubzones/internal/models"
)

// viewportParams are the query parameters of a bounding box.
var viewportParams = [4]string{"west", "south", "east", "north"}

// parseViewport reads west, south, east and north. All four are required.
func parseViewport(r *http.Request) (models.BoundingBox, *models.APIError) {
	var values [4]float64
	for i, name := range viewportParams {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			return models.BoundingBox{}, paramError(name, "required", fmt.Sprintf("%s is required", name))
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.BoundingBox{}, paramError(name, "number", fmt.Sprintf("%s must be a number", name))
		}
		values[i] = v
	}
	return models.BoundingBox{West: values[0], South: values[1], East: values[2], North: values[3]}, nil
}

// getFloatParam extracts an optional float query parameter. A present but
// malformed value is an error.
func getFloatParam(r *http.Request, key string, defaultValue float64) (float64, *models.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, paramError(key, "number", fmt.Sprintf("%s must be a number", key))
	}
	return v, nil
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func paramError(field, tag, message string) *models.APIError {
	return &models.APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: map[string]interface{}{"field": field, "tag": tag},
	}
}
