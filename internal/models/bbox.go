// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is an axis-aligned WGS84 rectangle in degrees.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// NewBoundingBox converts an orb.Bound.
func NewBoundingBox(b orb.Bound) BoundingBox {
	return BoundingBox{West: b.Min.Lon(), South: b.Min.Lat(), East: b.Max.Lon(), North: b.Max.Lat()}
}

// BoundOf returns the bounding box of a geometry.
func BoundOf(g orb.Geometry) BoundingBox {
	if g == nil {
		return BoundingBox{}
	}
	return NewBoundingBox(g.Bound())
}

// Bound converts the box to an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// Polygon returns the box as a closed counter-clockwise polygon.
func (b BoundingBox) Polygon() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}}
}

// IsEmpty reports whether the box has no area.
func (b BoundingBox) IsEmpty() bool {
	return !(b.East > b.West) || !(b.North > b.South)
}

// Width returns the east-west extent in degrees.
func (b BoundingBox) Width() float64 { return b.East - b.West }

// Height returns the north-south extent in degrees.
func (b BoundingBox) Height() float64 { return b.North - b.South }

// Intersects reports whether the two boxes overlap, edges included.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.West <= o.East && o.West <= b.East && b.South <= o.North && o.South <= b.North
}

// Contains reports whether o lies entirely within b.
func (b BoundingBox) Contains(o BoundingBox) bool {
	return o.West >= b.West && o.East <= b.East && o.South >= b.South && o.North <= b.North
}

// Pad grows the box by d degrees on every side.
func (b BoundingBox) Pad(d float64) BoundingBox {
	return BoundingBox{West: b.West - d, South: b.South - d, East: b.East + d, North: b.North + d}
}

// Validate checks that the box is finite, inside WGS84 range and non-empty.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounding box coordinates must be finite")
		}
	}
	if b.West < -180 || b.East > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if b.IsEmpty() {
		return fmt.Errorf("bounding box is empty (west=%g south=%g east=%g north=%g)", b.West, b.South, b.East, b.North)
	}
	return nil
}
