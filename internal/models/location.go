// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// SensitiveLocation is a point of interest around which a club may not
// operate. Geometry is WGS84 degrees; Simplified is only used by the fast
// and balanced calculation modes.
type SensitiveLocation struct {
	ID         int64             `json:"id"`          // process-local, unique, assigned at ingestion
	ExternalID int64             `json:"external_id"` // source OSM id, not unique across element kinds
	Name       string            `json:"name,omitempty"`
	Category   Category          `json:"category"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Geometry   orb.Geometry      `json:"-"`
	Simplified orb.Geometry      `json:"-"`
	BBox       BoundingBox       `json:"bbox"`
	Cell       GridCell          `json:"cell"`

	// Valid is filled by viewport queries from ST_IsValid on the returned geometry.
	Valid bool `json:"valid"`
}

// NewSensitiveLocation derives category, bbox, grid cell and the simplified
// geometry from raw geometry and tags.
func NewSensitiveLocation(externalID int64, tags map[string]string, geom orb.Geometry, tolerance float64) SensitiveLocation {
	return SensitiveLocation{
		ExternalID: externalID,
		Name:       tags["name"],
		Category:   Classify(tags),
		Attributes: tags,
		Geometry:   geom,
		Simplified: SimplifyGeometry(geom, tolerance),
		BBox:       BoundOf(geom),
		Cell:       CellOf(Centroid(geom)),
		Valid:      true,
	}
}

// Centroid returns the planar centroid of g.
func Centroid(g orb.Geometry) orb.Point {
	if g == nil {
		return orb.Point{}
	}
	c, _ := planar.CentroidArea(g)
	return c
}

// SimplifyGeometry applies Douglas-Peucker with the given tolerance in
// degrees. If simplification would leave a ring with fewer than four points
// or a line with fewer than two, the original geometry is returned.
func SimplifyGeometry(g orb.Geometry, tolerance float64) orb.Geometry {
	if g == nil || tolerance <= 0 {
		return g
	}
	if _, ok := g.(orb.Point); ok {
		return g
	}

	simplified := simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(g))
	if simplified == nil || degenerate(simplified) {
		return g
	}
	return simplified
}

func degenerate(g orb.Geometry) bool {
	switch v := g.(type) {
	case orb.LineString:
		return len(v) < 2
	case orb.Ring:
		return len(v) < 4
	case orb.Polygon:
		if len(v) == 0 {
			return true
		}
		for _, r := range v {
			if len(r) < 4 {
				return true
			}
		}
	case orb.MultiPolygon:
		for _, p := range v {
			if degenerate(p) {
				return true
			}
		}
	case orb.MultiLineString:
		for _, l := range v {
			if len(l) < 2 {
				return true
			}
		}
	}
	return false
}

// GeometryFromWay turns resolved way coordinates into a geometry. Closed
// ways with at least four points become polygons, other ways with at least
// two points become lines. Shorter ways yield nil.
func GeometryFromWay(points []orb.Point) orb.Geometry {
	switch {
	case len(points) >= 4 && points[0].Equal(points[len(points)-1]):
		ring := make(orb.Ring, len(points))
		copy(ring, points)
		return orb.Polygon{ring}
	case len(points) >= 2:
		line := make(orb.LineString, len(points))
		copy(line, points)
		return line
	default:
		return nil
	}
}
