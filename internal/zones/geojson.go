// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/clubzones/internal/models"
)

// NewZonesResponse renders a result for the API. Success carries the
// restricted feature (omitted when nothing matched) and the eligible
// feature; FallbackNeeded carries an empty collection and the reason.
func NewZonesResponse(res Result) *models.ZonesResponse {
	stats := res.Stats()
	resp := &models.ZonesResponse{
		Features:         geojson.NewFeatureCollection(),
		Mode:             string(stats.Mode),
		BufferMeters:     stats.BufferMeters,
		LocationCount:    stats.LocationCount,
		ExcludedCount:    stats.ExcludedCount,
		ProcessingTimeMS: stats.ProcessingTime.Milliseconds(),
		FallbackUsed:     res.FallbackUsed(),
	}

	switch r := res.(type) {
	case *Success:
		if r.Restricted != nil {
			resp.Features.Append(zoneFeature(r.Restricted, models.FeatureKindRestricted))
		}
		if r.Eligible != nil {
			resp.Features.Append(zoneFeature(r.Eligible, models.FeatureKindEligible))
		}
	case *FallbackNeeded:
		resp.FallbackReason = r.Reason
	}
	return resp
}

func zoneFeature(g orb.Geometry, kind string) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["kind"] = kind
	return f
}
