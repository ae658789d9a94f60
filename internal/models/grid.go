// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import (
	"math"

	"github.com/paulmach/orb"
)

// GridCellSize is the edge length of a grid cell in degrees (~1.1km).
const GridCellSize = 0.01

// GridCell is the coarse partition cell containing a location's centroid.
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellOf returns the cell containing p.
func CellOf(p orb.Point) GridCell {
	return GridCell{
		X: int(math.Floor(p.Lon() / GridCellSize)),
		Y: int(math.Floor(p.Lat() / GridCellSize)),
	}
}

// GridRange is an inclusive range of cells.
type GridRange struct {
	MinX, MinY int
	MaxX, MaxY int
}

// GridRange returns the cells covering b, widened by margin cells on each
// side. A margin of one keeps geometries whose centroid sits just outside
// the box from being pruned before the bounding box check.
func (b BoundingBox) GridRange(margin int) GridRange {
	lo := CellOf(orb.Point{b.West, b.South})
	hi := CellOf(orb.Point{b.East, b.North})
	return GridRange{
		MinX: lo.X - margin,
		MinY: lo.Y - margin,
		MaxX: hi.X + margin,
		MaxY: hi.Y + margin,
	}
}

// Contains reports whether c lies inside the range.
func (r GridRange) Contains(c GridCell) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}
