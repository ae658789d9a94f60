// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/events"
	"github.com/tomtom215/clubzones/internal/models"
	"github.com/tomtom215/clubzones/internal/testinfra"
	"github.com/tomtom215/clubzones/internal/zones"
)

func TestMain(m *testing.M) {
	testinfra.SpatialMain(m)
}

var mitte = models.BoundingBox{West: 13.400, South: 52.515, East: 13.410, North: 52.525}

func testOSM() *osm.OSM {
	return &osm.OSM{Nodes: osm.Nodes{
		{ID: 1, Lat: 52.520, Lon: 13.405, Tags: osm.Tags{{Key: "amenity", Value: "school"}, {Key: "name", Value: "Grundschule"}}},
		{ID: 2, Lat: 52.522, Lon: 13.408, Tags: osm.Tags{{Key: "amenity", Value: "kindergarten"}, {Key: "name", Value: "Kita Mitte"}}},
	}}
}

type fakeFetcher struct {
	path  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.path, f.err
}

func setupEngine(t *testing.T, opts ...Option) (*Engine, *database.DB) {
	t.Helper()
	cfg := config.Default()
	cfg.Database = *testinfra.DatabaseConfig()
	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	testinfra.RequireSpatial(t, db.IsSpatialAvailable())
	eng := New(cfg, db, opts...)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, db
}

func staticLoader(data *osm.OSM, err error) func(context.Context, string) (*osm.OSM, error) {
	return func(context.Context, string) (*osm.OSM, error) { return data, err }
}

func TestInit_NoSource(t *testing.T) {
	eng, _ := setupEngine(t)
	if err := eng.Init(context.Background(), Source{}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Init() error = %v, want ErrNoSource", err)
	}
	if eng.Ready() {
		t.Error("Ready() = true before any dataset loaded")
	}
}

func TestInit_FallsBackToOSM(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("unreachable")}
	eng, db := setupEngine(t, WithFetcher(fetcher), WithOSMLoader(staticLoader(testOSM(), nil)))

	err := eng.Init(context.Background(), Source{SnapshotLocator: "s3://bucket/zones.parquet", OSMFile: "berlin.osm"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
	if !eng.Ready() {
		t.Error("Ready() = false after OSM fallback")
	}
	if db.IsSnapshotLoaded() {
		t.Error("IsSnapshotLoaded() = true after OSM ingestion")
	}
}

func TestInit_SnapshotFailsWithoutOSMFile(t *testing.T) {
	eng, _ := setupEngine(t, WithFetcher(&fakeFetcher{err: errors.New("404")}))

	if err := eng.Init(context.Background(), Source{SnapshotLocator: "https://example.org/zones.parquet"}); err == nil {
		t.Fatal("Init() error = nil, want snapshot failure")
	}
	if eng.Ready() {
		t.Error("Ready() = true after failed init")
	}
}

func TestInit_OSMLoadError(t *testing.T) {
	eng, _ := setupEngine(t, WithOSMLoader(staticLoader(nil, os.ErrNotExist)))

	err := eng.Init(context.Background(), Source{OSMFile: "missing.osm"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Init() error = %v, want os.ErrNotExist", err)
	}
}

func TestInit_FromSnapshot(t *testing.T) {
	// Build a snapshot with one engine, then load it into a second one.
	src, _ := setupEngine(t, WithOSMLoader(staticLoader(testOSM(), nil)))
	if err := src.Init(context.Background(), Source{OSMFile: "berlin.osm"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "zones.parquet")
	if err := src.ExportSnapshot(context.Background(), path); err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	loader := staticLoader(nil, errors.New("OSM loader must not run"))
	eng, _ := setupEngine(t, WithFetcher(&fakeFetcher{path: path}), WithOSMLoader(loader))
	if err := eng.Init(context.Background(), Source{SnapshotLocator: path, OSMFile: "berlin.osm"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !eng.Ready() || !eng.SnapshotLoaded() {
		t.Errorf("Ready() = %v, SnapshotLoaded() = %v, want both true", eng.Ready(), eng.SnapshotLoaded())
	}

	stats, err := eng.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
}

func TestIngest_PublishesEvent(t *testing.T) {
	bus := events.NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.SubscribeDatasetReplaced(ctx)
	if err != nil {
		t.Fatalf("SubscribeDatasetReplaced() error = %v", err)
	}

	eng, _ := setupEngine(t, WithBus(bus))
	report, err := eng.Ingest(ctx, testOSM())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", report.Inserted)
	}

	select {
	case ev := <-ch:
		if ev.Source != "osm" || ev.Locations != 2 {
			t.Errorf("event = %+v, want source osm with 2 locations", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no DatasetReplaced event received")
	}
}

func TestCalculate_ThroughEngine(t *testing.T) {
	eng, _ := setupEngine(t)
	if _, err := eng.Ingest(context.Background(), testOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	res, err := eng.Calculate(context.Background(), zones.Request{
		BufferMeters: 100, Viewport: mitte, Mode: zones.ModeBalanced,
	}, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	ok, isSuccess := res.(*zones.Success)
	if !isSuccess {
		t.Fatalf("Calculate() = %T, want *zones.Success", res)
	}
	if ok.Stats().LocationCount != 2 {
		t.Errorf("LocationCount = %d, want 2", ok.Stats().LocationCount)
	}
	if ok.Eligible == nil || ok.Restricted == nil {
		t.Error("Success geometries must not be nil")
	}
}

func TestQueries(t *testing.T) {
	eng, _ := setupEngine(t)
	if _, err := eng.Ingest(context.Background(), testOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	locs, err := eng.Locations(context.Background(), mitte)
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if len(locs) != 2 {
		t.Errorf("len(Locations()) = %d, want 2", len(locs))
	}

	results := eng.Search(context.Background(), "kita", 10)
	if len(results) != 1 || results[0].Name != "Kita Mitte" {
		t.Errorf("Search(kita) = %+v, want Kita Mitte", results)
	}
}

func TestDiscardSnapshot(t *testing.T) {
	eng, _ := setupEngine(t)
	if _, err := eng.Ingest(context.Background(), testOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := eng.DiscardSnapshot(context.Background()); err != nil {
		t.Fatalf("DiscardSnapshot() error = %v", err)
	}
	if eng.Ready() {
		t.Error("Ready() = true after DiscardSnapshot")
	}
	_, err := eng.Locations(context.Background(), mitte)
	if !errors.Is(err, database.ErrNotInitialized) {
		t.Errorf("Locations() error = %v, want ErrNotInitialized", err)
	}
}

func TestClose(t *testing.T) {
	eng, _ := setupEngine(t)
	if _, err := eng.Ingest(context.Background(), testOSM()); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if eng.Ready() {
		t.Error("Ready() = true after Close")
	}
	if _, err := eng.Ingest(context.Background(), testOSM()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Ingest() error = %v, want ErrEngineClosed", err)
	}
	if _, err := eng.Statistics(context.Background()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Statistics() error = %v, want ErrEngineClosed", err)
	}
	if res := eng.LoadSnapshot(context.Background(), "x.parquet"); !errors.Is(res.Err, ErrEngineClosed) {
		t.Errorf("LoadSnapshot() err = %v, want ErrEngineClosed", res.Err)
	}
	if got := eng.Search(context.Background(), "kita", 10); len(got) != 0 {
		t.Errorf("Search() after Close = %v, want empty", got)
	}

	_, err := eng.Calculate(context.Background(), zones.Request{BufferMeters: 100, Viewport: mitte, Mode: zones.ModeFast}, nil)
	if !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Calculate() error = %v, want ErrEngineClosed", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    state
		want string
	}{
		{stateCreated, "created"},
		{stateReady, "ready"},
		{stateClosed, "closed"},
		{state(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("state(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
