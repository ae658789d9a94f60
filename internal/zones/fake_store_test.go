// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"context"
	"sync"

	"github.com/paulmach/orb"

	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/models"
)

// fakeStore records calls and returns canned data. Union returns the padded
// bound of the inputs; EligibleArea returns the viewport polygon.
type fakeStore struct {
	mu sync.Mutex

	locations []models.SensitiveLocation
	queryErr  error
	unionErr  error
	diffErr   error
	repair    func(orb.Geometry) (orb.Geometry, error)
	onUnion   func(ctx context.Context)

	queryOpts     database.ViewportOptions
	unionInput    []orb.Geometry
	unionDistance float64
	unionSegments int
	diffTolerance float64
	diffCalled    bool
	queryCalled   bool
}

func (f *fakeStore) QueryInViewport(ctx context.Context, bbox models.BoundingBox, opts database.ViewportOptions) ([]models.SensitiveLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalled = true
	f.queryOpts = opts
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := make([]models.SensitiveLocation, len(f.locations))
	copy(out, f.locations)
	return out, nil
}

func (f *fakeStore) RepairGeometry(ctx context.Context, g orb.Geometry) (orb.Geometry, error) {
	if f.repair != nil {
		return f.repair(g)
	}
	return g, nil
}

func (f *fakeStore) BufferUnion(ctx context.Context, geoms []orb.Geometry, distanceDeg float64, segments int) (orb.Geometry, error) {
	f.mu.Lock()
	f.unionInput = geoms
	f.unionDistance = distanceDeg
	f.unionSegments = segments
	hook := f.onUnion
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if f.unionErr != nil {
		return nil, f.unionErr
	}
	if len(geoms) == 0 {
		return nil, nil
	}
	b := geoms[0].Bound()
	for _, g := range geoms[1:] {
		b = b.Union(g.Bound())
	}
	return b.Pad(distanceDeg).ToPolygon(), nil
}

func (f *fakeStore) EligibleArea(ctx context.Context, viewport models.BoundingBox, restricted orb.Geometry, tolerance float64) (orb.Geometry, orb.Geometry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diffCalled = true
	f.diffTolerance = tolerance
	if f.diffErr != nil {
		return nil, nil, f.diffErr
	}
	return viewport.Polygon(), restricted, nil
}

var testViewport = models.BoundingBox{West: 13.400, South: 52.515, East: 13.410, North: 52.525}

func pointLocation(id int64, lon, lat float64) models.SensitiveLocation {
	p := orb.Point{lon, lat}
	return models.SensitiveLocation{
		ID:         id,
		ExternalID: id,
		Category:   models.CategorySchool,
		Geometry:   p,
		Simplified: p,
		BBox:       models.BoundOf(p),
		Cell:       models.CellOf(p),
		Valid:      true,
	}
}
