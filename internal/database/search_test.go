// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"testing"
)

func setupSearchDB(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	requireSpatial(t, db)
	if _, err := db.Ingest(context.Background(), searchOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return db
}

func TestSearchByName_Ranking(t *testing.T) {
	db := setupSearchDB(t)

	got := db.SearchByName(context.Background(), "PARK", 10)
	want := []string{"park", "Park Schule", "Parkschule", "Kita Park", "Schule am Park"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, r := range got {
		if r.Name != want[i] {
			t.Errorf("result %d = %q, want %q", i, r.Name, want[i])
		}
		if r.Lon == 0 || r.Lat == 0 {
			t.Errorf("result %q has no centroid", r.Name)
		}
	}
}

func TestSearchByName_Limit(t *testing.T) {
	db := setupSearchDB(t)

	got := db.SearchByName(context.Background(), "park", 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "park" || got[1].Name != "Park Schule" {
		t.Errorf("limited results = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestSearchByName_NeverFails(t *testing.T) {
	db := setupSearchDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no match", "Bahnhof"},
		{"quote", "O'Brien"},
		{"like wildcard", "%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := db.SearchByName(ctx, tt.query, 10)
			if got == nil {
				t.Fatal("SearchByName() returned nil slice")
			}
			if len(got) != 0 {
				t.Errorf("SearchByName(%q) = %+v, want empty", tt.query, got)
			}
		})
	}
}

func TestNormalizeSearchLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{0, defaultSearchLimit},
		{-5, defaultSearchLimit},
		{7, 7},
		{maxSearchLimit + 1, maxSearchLimit},
	}
	for _, tt := range tests {
		if got := normalizeSearchLimit(tt.in); got != tt.want {
			t.Errorf("normalizeSearchLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
