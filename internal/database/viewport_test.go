// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"testing"

	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/models"
)

func TestQueryInViewport(t *testing.T) {
	db := setupLoadedDB(t)
	ctx := context.Background()

	got, err := db.QueryInViewport(ctx, berlinViewport, ViewportOptions{})
	if err != nil {
		t.Fatalf("QueryInViewport() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	for _, loc := range got {
		if loc.ExternalID == 3 {
			t.Error("Potsdam school returned for Mitte viewport")
		}
		if loc.Geometry == nil {
			t.Errorf("location %d has no geometry", loc.ID)
		}
		if loc.Simplified != nil {
			t.Errorf("location %d has simplified geometry on a full query", loc.ID)
		}
		if !loc.Valid {
			t.Errorf("location %d reported invalid", loc.ID)
		}
		if !berlinViewport.Intersects(loc.BBox) {
			t.Errorf("location %d bbox %+v outside viewport", loc.ID, loc.BBox)
		}
	}
}

func TestQueryInViewport_Simplified(t *testing.T) {
	db := setupLoadedDB(t)

	got, err := db.QueryInViewport(context.Background(), berlinViewport, ViewportOptions{Simplified: true})
	if err != nil {
		t.Fatalf("QueryInViewport() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for _, loc := range got {
		if loc.Simplified == nil || loc.Geometry != nil {
			t.Errorf("location %d: simplified=%v geometry=%v", loc.ID, loc.Simplified, loc.Geometry)
		}
	}
}

func TestQueryInViewport_Stages(t *testing.T) {
	db := setupLoadedDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		bbox models.BoundingBox
		want int
	}{
		{"only school node", models.BoundingBox{West: 13.404, South: 52.519, East: 13.406, North: 52.521}, 1},
		{"potsdam", models.BoundingBox{West: 13.05, South: 52.39, East: 13.07, North: 52.41}, 1},
		{"empty ocean", models.BoundingBox{West: -30, South: 10, East: -29, North: 11}, 0},
		// The line's bbox overlaps this corner but the line itself does not.
		{"line bbox corner", models.BoundingBox{West: 13.4015, South: 52.5250, East: 13.4025, North: 52.5253}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.QueryInViewport(ctx, tt.bbox, ViewportOptions{})
			if err != nil {
				t.Fatalf("QueryInViewport() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQueryInViewport_InvalidViewport(t *testing.T) {
	db := setupLoadedDB(t)

	bad := models.BoundingBox{West: 13.42, South: 52.51, East: 13.39, North: 52.53}
	if _, err := db.QueryInViewport(context.Background(), bad, ViewportOptions{}); err == nil {
		t.Error("inverted viewport accepted")
	}
}

// campusOSM holds one wide polygon from 13.30 to 13.50 whose centroid cell
// is far from its eastern edge.
func campusOSM() *osm.OSM {
	return &osm.OSM{
		Nodes: osm.Nodes{
			{ID: 1, Lat: 52.500, Lon: 13.300},
			{ID: 2, Lat: 52.500, Lon: 13.500},
			{ID: 3, Lat: 52.510, Lon: 13.500},
			{ID: 4, Lat: 52.510, Lon: 13.300},
		},
		Ways: osm.Ways{
			{ID: 500, Nodes: wayNodes(1, 2, 3, 4, 1), Tags: tags("amenity", "school", "name", "Schulcampus")},
		},
	}
}

func TestQueryInViewport_GridMargin(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()
	if _, err := db.Ingest(ctx, campusOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	eastEdge := models.BoundingBox{West: 13.482, South: 52.502, East: 13.488, North: 52.508}

	tests := []struct {
		name   string
		margin int
		want   int
	}{
		{"default margin prunes distant centroid", 0, 0},
		{"one cell prunes distant centroid", 1, 0},
		{"wide margin reaches centroid cell", 20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.QueryInViewport(ctx, eastEdge, ViewportOptions{GridMargin: tt.margin})
			if err != nil {
				t.Fatalf("QueryInViewport() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
