// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
	"github.com/tomtom215/clubzones/internal/models"
)

// MetersPerDegree converts buffer distances to degrees on both axes.
const MetersPerDegree = 111000.0

var (
	// ErrInvalidViewport is returned for an empty or out of range viewport.
	ErrInvalidViewport = errors.New("invalid viewport")

	// ErrInvalidMode is returned for a mode other than fast, balanced or accurate.
	ErrInvalidMode = errors.New("invalid mode")
)

// Store is the spatial store surface the calculator needs.
// *database.DB implements it.
type Store interface {
	QueryInViewport(ctx context.Context, bbox models.BoundingBox, opts database.ViewportOptions) ([]models.SensitiveLocation, error)
	RepairGeometry(ctx context.Context, g orb.Geometry) (orb.Geometry, error)
	BufferUnion(ctx context.Context, geoms []orb.Geometry, distanceDeg float64, segments int) (orb.Geometry, error)
	EligibleArea(ctx context.Context, viewport models.BoundingBox, restricted orb.Geometry, tolerance float64) (eligible, simplified orb.Geometry, err error)
}

// Request describes one calculation. BufferMeters is not range checked
// here; the API layer enforces the configured bounds.
type Request struct {
	BufferMeters float64
	Viewport     models.BoundingBox
	Mode         Mode
}

// Calculator runs zone calculations against a Store. It holds no state
// between calls and is safe for concurrent use.
type Calculator struct {
	store Store
	cfg   config.ZonesConfig
}

// NewCalculator creates a calculator over store.
func NewCalculator(store Store, cfg config.ZonesConfig) *Calculator {
	return &Calculator{store: store, cfg: cfg}
}

// Calculate computes the restricted and eligible areas for req.
//
// Topology failures yield *FallbackNeeded and context cancellation yields
// *Cancelled; neither is an error. Errors are returned for invalid input,
// an uninitialized store and unexpected engine failures.
func (c *Calculator) Calculate(ctx context.Context, req Request, progress ProgressFunc) (res Result, err error) {
	start := time.Now()
	stats := Stats{Mode: req.Mode, BufferMeters: req.BufferMeters}

	defer func() {
		if res == nil {
			return
		}
		metrics.RecordZoneCalculation(string(req.Mode), string(res.Outcome()), time.Since(start), res.Stats().LocationCount)
	}()

	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if err := req.Viewport.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidViewport, err)
	}

	params := paramsFor(req.Mode, c.cfg)
	distanceDeg := req.BufferMeters / MetersPerDegree

	finish := func(r Result) Result {
		switch v := r.(type) {
		case *Success:
			v.stats.ProcessingTime = time.Since(start)
		case *FallbackNeeded:
			v.stats.ProcessingTime = time.Since(start)
		case *Cancelled:
			v.stats.ProcessingTime = time.Since(start)
		}
		return r
	}

	if ctx.Err() != nil {
		return finish(newCancelled(stats)), nil
	}

	locations, err := c.store.QueryInViewport(ctx, req.Viewport, database.ViewportOptions{
		Simplified: params.simplifiedSource,
		GridMargin: c.cfg.GridMargin,
	})
	if err != nil {
		if ctx.Err() != nil {
			return finish(newCancelled(stats)), nil
		}
		return nil, fmt.Errorf("failed to query viewport: %w", err)
	}
	report(progress, StagePrefilter, len(locations), start)

	geoms, excluded, err := c.sourceGeometries(ctx, locations, params.simplifiedSource)
	if err != nil {
		if ctx.Err() != nil {
			return finish(newCancelled(stats)), nil
		}
		return nil, err
	}
	stats.LocationCount = len(geoms)
	stats.ExcludedCount = excluded

	restricted, err := c.store.BufferUnion(ctx, geoms, distanceDeg, params.segments)
	if r := c.classify(ctx, err, stats, "union"); r != nil {
		return finish(r), nil
	} else if err != nil {
		return nil, err
	}
	report(progress, StageUnion, len(geoms), start)

	// Union is the most expensive step; a request superseded during it
	// stops here.
	if ctx.Err() != nil {
		return finish(newCancelled(stats)), nil
	}

	eligible, simplified, err := c.store.EligibleArea(ctx, req.Viewport, restricted, params.tolerance)
	if r := c.classify(ctx, err, stats, "difference"); r != nil {
		return finish(r), nil
	} else if err != nil {
		return nil, err
	}
	if simplified != nil {
		restricted = simplified
	}
	report(progress, StageDifference, len(geoms), start)

	return finish(&Success{Restricted: restricted, Eligible: eligible, stats: stats}), nil
}

// classify maps a geometry step error to a result variant. It returns nil
// when err is nil or must be returned to the caller as an error.
func (c *Calculator) classify(ctx context.Context, err error, stats Stats, step string) Result {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return newCancelled(stats)
	case errors.Is(err, database.ErrTopology):
		logging.Warn().
			Err(err).
			Str("step", step).
			Str("mode", string(stats.Mode)).
			Int("locations", stats.LocationCount).
			Msg("Topology failure, caller should use the fallback path")
		return newFallback(stats, err.Error())
	}
	return nil
}

// sourceGeometries picks the geometry variant for the mode and repairs
// invalid ones. Locations that cannot be repaired are excluded and counted.
func (c *Calculator) sourceGeometries(ctx context.Context, locations []models.SensitiveLocation, simplified bool) ([]orb.Geometry, int, error) {
	geoms := make([]orb.Geometry, 0, len(locations))
	excluded := 0

	for i := range locations {
		loc := &locations[i]
		g := loc.Geometry
		if simplified {
			g = loc.Simplified
		}
		if g == nil {
			excluded++
			continue
		}

		if !loc.Valid {
			repaired, err := c.store.RepairGeometry(ctx, g)
			if err != nil {
				if ctx.Err() != nil {
					return nil, 0, ctx.Err()
				}
				if !errors.Is(err, database.ErrGeometryUnrepairable) {
					return nil, 0, fmt.Errorf("failed to repair location %d: %w", loc.ID, err)
				}
				logging.Warn().
					Err(err).
					Int64("id", loc.ID).
					Int64("external_id", loc.ExternalID).
					Msg("Excluding location with unrepairable geometry")
				excluded++
				continue
			}
			g = repaired
		}
		geoms = append(geoms, g)
	}

	return geoms, excluded, nil
}
