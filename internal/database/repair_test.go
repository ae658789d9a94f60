// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var bowtie = orb.Polygon{{
	{13.405, 52.520}, {13.407, 52.522}, {13.407, 52.520}, {13.405, 52.522}, {13.405, 52.520},
}}

func TestRepairGeometry_ValidUnchanged(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)

	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	got, err := db.RepairGeometry(context.Background(), square)
	if err != nil {
		t.Fatalf("RepairGeometry() error = %v", err)
	}
	if !orb.Equal(got, square) {
		t.Errorf("RepairGeometry() = %v, want input unchanged", got)
	}
}

func TestRepairGeometry_Bowtie(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	repaired, err := db.RepairGeometry(ctx, bowtie)
	if err != nil {
		t.Fatalf("RepairGeometry() error = %v", err)
	}
	if repaired == nil {
		t.Fatal("RepairGeometry() returned nil")
	}
	if planar.Area(repaired) <= 0 {
		t.Errorf("repaired area = %g, want > 0", planar.Area(repaired))
	}

	// A repaired geometry is valid, so repairing again is a no-op.
	again, err := db.RepairGeometry(ctx, repaired)
	if err != nil {
		t.Fatalf("second RepairGeometry() error = %v", err)
	}
	if !orb.Equal(again, repaired) {
		t.Error("repair is not idempotent")
	}
}

func TestRepairGeometry_Nil(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)

	if _, err := db.RepairGeometry(context.Background(), nil); !errors.Is(err, ErrGeometryUnrepairable) {
		t.Errorf("RepairGeometry(nil) error = %v, want ErrGeometryUnrepairable", err)
	}
}

func TestRepairGeometry_StoredBowtieFlaggedInvalid(t *testing.T) {
	db := setupTestDB(t)
	requireSpatial(t, db)
	ctx := context.Background()

	if _, err := db.Ingest(ctx, bowtieOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	got, err := db.QueryInViewport(ctx, berlinViewport, ViewportOptions{})
	if err != nil {
		t.Fatalf("QueryInViewport() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Valid {
		t.Error("bowtie reported valid")
	}
}

func TestRepairStrategies_Order(t *testing.T) {
	db := &DB{makeValidAvailable: true}
	got := db.repairStrategies()
	want := []string{"make_valid", "buffer", "reduce_precision"}
	if len(got) != len(want) {
		t.Fatalf("strategies = %d, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.method != want[i] {
			t.Errorf("strategy %d = %s, want %s", i, s.method, want[i])
		}
	}

	db.makeValidAvailable = false
	if got := db.repairStrategies(); got[0].method != "buffer" {
		t.Errorf("first strategy without ST_MakeValid = %s, want buffer", got[0].method)
	}
}
