// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/events"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/models"
	"github.com/tomtom215/clubzones/internal/osmdata"
	"github.com/tomtom215/clubzones/internal/snapshot"
	"github.com/tomtom215/clubzones/internal/zones"
)

var (
	// ErrEngineClosed is returned by every method after Close.
	ErrEngineClosed = errors.New("engine closed")

	// ErrNoSource is returned by Init when neither source is configured.
	ErrNoSource = errors.New("no snapshot locator or OSM file configured")
)

// SnapshotFetcher resolves a snapshot locator to a local parquet path.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// Source names the datasets Init may load.
type Source struct {
	SnapshotLocator string
	OSMFile         string
}

type state int

const (
	stateCreated state = iota
	stateReady
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Engine serializes ingestion against calculations on one store.
type Engine struct {
	cfg     *config.Config
	db      *database.DB
	calc    *zones.Calculator
	coord   *zones.Coordinator
	bus     *events.Bus
	fetcher SnapshotFetcher
	loadOSM func(ctx context.Context, path string) (*osm.OSM, error)

	// mu is held for writing while the dataset is replaced and for
	// reading by calculations and queries.
	mu    sync.RWMutex
	state state

	// epoch is cancelled before the dataset is replaced so every running
	// calculation, including those of other coordinators, stops early.
	epochMu  sync.Mutex
	epoch    context.Context
	endEpoch context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus publishes DatasetReplaced events on bus.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithFetcher replaces the default snapshot fetcher.
func WithFetcher(f SnapshotFetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithOSMLoader replaces osmdata.LoadFile.
func WithOSMLoader(fn func(ctx context.Context, path string) (*osm.OSM, error)) Option {
	return func(e *Engine) { e.loadOSM = fn }
}

// New creates an engine over db. The caller keeps ownership of db and
// closes it after Close.
func New(cfg *config.Config, db *database.DB, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		db:      db,
		calc:    zones.NewCalculator(db, cfg.Zones),
		fetcher: snapshot.NewFetcher(cfg.Data),
		loadOSM: osmdata.LoadFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.coord = zones.NewCoordinator(runner{e})
	e.epoch, e.endEpoch = context.WithCancel(context.Background())

	if cfg.Zones.IngestSimplifyTolerance > 0 {
		db.SetSimplifyTolerance(cfg.Zones.IngestSimplifyTolerance)
	}
	return e
}

// Init loads the snapshot, falling back to the OSM file when the snapshot
// is not configured or cannot be loaded.
func (e *Engine) Init(ctx context.Context, src Source) error {
	if src.SnapshotLocator == "" && src.OSMFile == "" {
		return ErrNoSource
	}

	var snapErr error
	if src.SnapshotLocator != "" {
		res := e.LoadSnapshot(ctx, src.SnapshotLocator)
		if res.Loaded {
			return nil
		}
		if errors.Is(res.Err, ErrEngineClosed) {
			return res.Err
		}
		snapErr = res.Err
		logging.Warn().Err(snapErr).Str("locator", src.SnapshotLocator).Msg("Snapshot unavailable, falling back to OSM file")
	}

	if src.OSMFile == "" {
		return fmt.Errorf("snapshot load failed and no OSM file configured: %w", snapErr)
	}

	data, err := e.loadOSM(ctx, src.OSMFile)
	if err != nil {
		return fmt.Errorf("failed to load OSM file: %w", err)
	}
	if _, err := e.Ingest(ctx, data); err != nil {
		return err
	}
	return nil
}

// Ingest replaces the dataset with data. Running calculations are
// cancelled and waited for.
func (e *Engine) Ingest(ctx context.Context, data *osm.OSM) (*models.IngestReport, error) {
	e.interruptCalculations()

	e.mu.Lock()
	if e.state == stateClosed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	report, err := e.db.Ingest(ctx, data)
	if err == nil {
		e.state = stateReady
	}
	e.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to ingest locations: %w", err)
	}
	e.publish(ctx, events.DatasetReplaced{Source: "osm", Locations: report.Inserted})
	return report, nil
}

// LoadSnapshot fetches and loads the snapshot at locator. Failure is
// reported in the result; the previous dataset stays in place.
func (e *Engine) LoadSnapshot(ctx context.Context, locator string) models.SnapshotResult {
	if e.isClosed() {
		return models.SnapshotResult{Err: ErrEngineClosed}
	}

	start := time.Now()
	path, err := e.fetcher.Fetch(ctx, locator)
	if err != nil {
		return models.SnapshotResult{Err: fmt.Errorf("failed to fetch snapshot: %w", err)}
	}

	e.interruptCalculations()

	e.mu.Lock()
	if e.state == stateClosed {
		e.mu.Unlock()
		return models.SnapshotResult{Err: ErrEngineClosed}
	}
	res := e.db.IngestFromSnapshot(ctx, path)
	if res.Loaded {
		e.state = stateReady
	}
	e.mu.Unlock()

	if res.Loaded {
		logging.Info().Str("locator", locator).Int64("rows", res.Rows).Dur("duration", time.Since(start)).Msg("Engine ready from snapshot")
		e.publish(ctx, events.DatasetReplaced{Source: "snapshot", Locator: locator, Locations: res.Rows})
	}
	return res
}

// Calculate runs req through the process-wide coordinator. A newer call
// cancels this one, which then returns *zones.Cancelled.
func (e *Engine) Calculate(ctx context.Context, req zones.Request, progress zones.ProgressFunc) (zones.Result, error) {
	return e.coord.Calculate(ctx, req, progress)
}

// NewCoordinator returns an independent single-flight coordinator over
// this engine.
func (e *Engine) NewCoordinator() *zones.Coordinator {
	return zones.NewCoordinator(runner{e})
}

// Locations returns the stored locations intersecting bbox.
func (e *Engine) Locations(ctx context.Context, bbox models.BoundingBox) ([]models.SensitiveLocation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateClosed {
		return nil, ErrEngineClosed
	}
	return e.db.QueryInViewport(ctx, bbox, database.ViewportOptions{})
}

// Search ranks locations by name. It never fails; a closed engine yields
// an empty slice.
func (e *Engine) Search(ctx context.Context, text string, limit int) []models.SearchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateClosed {
		return []models.SearchResult{}
	}
	return e.db.SearchByName(ctx, text, limit)
}

// Statistics summarizes the stored set.
func (e *Engine) Statistics(ctx context.Context) (*models.Statistics, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateClosed {
		return nil, ErrEngineClosed
	}
	return e.db.GetStatistics(ctx)
}

// Ready reports whether a dataset is loaded and the engine is open.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateReady && e.db.IsReady()
}

// SnapshotLoaded reports whether the current dataset came from a snapshot.
func (e *Engine) SnapshotLoaded() bool {
	return e.db.IsSnapshotLoaded()
}

// Ping checks the database connection.
func (e *Engine) Ping(ctx context.Context) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	return e.db.Ping(ctx)
}

// Close cancels the running calculation, waits for in-flight operations
// and disposes the engine. It is safe to call more than once.
func (e *Engine) Close() error {
	e.interruptCalculations()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateClosed {
		return nil
	}
	logging.Info().Str("from_state", e.state.String()).Msg("Engine closed")
	e.state = stateClosed
	return nil
}

// interruptCalculations cancels every calculation started before the call.
func (e *Engine) interruptCalculations() {
	e.coord.Cancel()

	e.epochMu.Lock()
	e.endEpoch()
	e.epoch, e.endEpoch = context.WithCancel(context.Background())
	e.epochMu.Unlock()
}

func (e *Engine) currentEpoch() context.Context {
	e.epochMu.Lock()
	defer e.epochMu.Unlock()
	return e.epoch
}

func (e *Engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateClosed
}

func (e *Engine) publish(ctx context.Context, ev events.DatasetReplaced) {
	if e.bus == nil {
		return
	}
	if err := e.bus.PublishDatasetReplaced(ctx, ev); err != nil {
		logging.Warn().Err(err).Str("source", ev.Source).Msg("Failed to publish dataset event")
	}
}

// runner runs one calculation under the read lock.
type runner struct{ e *Engine }

func (r runner) Calculate(ctx context.Context, req zones.Request, progress zones.ProgressFunc) (zones.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.e.currentEpoch(), cancel)
	defer stop()

	r.e.mu.RLock()
	defer r.e.mu.RUnlock()
	if r.e.state == stateClosed {
		return nil, ErrEngineClosed
	}
	return r.e.calc.Calculate(ctx, req, progress)
}

// ExportSnapshot writes the current dataset to a parquet snapshot.
func (e *Engine) ExportSnapshot(ctx context.Context, path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateClosed {
		return ErrEngineClosed
	}
	return e.db.ExportSnapshot(ctx, path)
}

// DiscardSnapshot drops the current dataset. The engine stays open and
// reports not ready until the next Ingest or LoadSnapshot.
func (e *Engine) DiscardSnapshot(ctx context.Context) error {
	e.interruptCalculations()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateClosed {
		return ErrEngineClosed
	}
	if err := e.db.DiscardSnapshot(ctx); err != nil {
		return err
	}
	e.state = stateCreated
	return nil
}
