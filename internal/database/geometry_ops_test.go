// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/tomtom215/clubzones/internal/models"
)

func TestBufferUnion_Empty(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)

	got, err := db.BufferUnion(context.Background(), nil, 0.001, 8)
	if err != nil || got != nil {
		t.Errorf("BufferUnion(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestBufferUnion_OverlappingPoints(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	single, err := db.BufferUnion(ctx, []orb.Geometry{orb.Point{0, 0}}, 1, 16)
	if err != nil {
		t.Fatalf("BufferUnion() error = %v", err)
	}
	// A 16 segment-per-quadrant circle is within half a percent of pi.
	if a := planar.Area(single); math.Abs(a-math.Pi)/math.Pi > 0.005 {
		t.Errorf("single buffer area = %g, want ~%g", a, math.Pi)
	}

	pair, err := db.BufferUnion(ctx, []orb.Geometry{orb.Point{0, 0}, orb.Point{1, 0}}, 1, 16)
	if err != nil {
		t.Fatalf("BufferUnion() error = %v", err)
	}
	a := planar.Area(pair)
	if a <= planar.Area(single) || a >= 2*planar.Area(single) {
		t.Errorf("overlapping union area = %g, want between %g and %g", a, planar.Area(single), 2*planar.Area(single))
	}
}

func TestBufferUnion_Chunked(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)

	// Enough points for two chunks, all covered by one buffer.
	geoms := make([]orb.Geometry, unionChunkSize+10)
	for i := range geoms {
		geoms[i] = orb.Point{float64(i%10) * 1e-5, float64(i/10) * 1e-5}
	}
	got, err := db.BufferUnion(context.Background(), geoms, 0.01, 4)
	if err != nil {
		t.Fatalf("BufferUnion() error = %v", err)
	}
	if _, ok := got.(orb.Polygon); !ok {
		t.Errorf("chunked union = %T, want a single orb.Polygon", got)
	}
}

func TestBufferUnion_Cancelled(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.BufferUnion(ctx, []orb.Geometry{orb.Point{0, 0}}, 1, 8)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BufferUnion(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestEligibleArea(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	viewport := models.BoundingBox{West: 0, South: 0, East: 10, North: 10}

	t.Run("nil restricted", func(t *testing.T) {
		eligible, restricted, err := db.EligibleArea(ctx, viewport, nil, 0)
		if err != nil {
			t.Fatalf("EligibleArea() error = %v", err)
		}
		if restricted != nil {
			t.Errorf("restricted = %v, want nil", restricted)
		}
		if a := planar.Area(eligible); a != 100 {
			t.Errorf("eligible area = %g, want 100", a)
		}
	})

	t.Run("hole", func(t *testing.T) {
		hole := orb.Polygon{{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}}
		eligible, restricted, err := db.EligibleArea(ctx, viewport, hole, 0)
		if err != nil {
			t.Fatalf("EligibleArea() error = %v", err)
		}
		if a := planar.Area(eligible); math.Abs(a-96) > 1e-9 {
			t.Errorf("eligible area = %g, want 96", a)
		}
		if a := planar.Area(restricted); math.Abs(a-4) > 1e-9 {
			t.Errorf("restricted area = %g, want 4", a)
		}
	})

	t.Run("covers viewport", func(t *testing.T) {
		all := models.BoundingBox{West: -1, South: -1, East: 11, North: 11}.Polygon()
		eligible, _, err := db.EligibleArea(ctx, viewport, all, 0)
		if err != nil {
			t.Fatalf("EligibleArea() error = %v", err)
		}
		if eligible != nil && planar.Area(eligible) != 0 {
			t.Errorf("eligible area = %g, want 0", planar.Area(eligible))
		}
	})
}
