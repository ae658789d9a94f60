// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package zones computes restricted and eligible areas for a map viewport.

A calculation buffers every sensitive location intersecting the viewport,
unions the buffers into the restricted area and subtracts it from the
viewport rectangle to get the eligible area:

	calc := zones.NewCalculator(db, cfg.Zones)
	res, err := calc.Calculate(ctx, zones.Request{
		BufferMeters: 200,
		Viewport:     viewport,
		Mode:         zones.ModeBalanced,
	}, nil)

Buffer distances are converted to degrees with a single constant of
111000 meters per degree for both axes. This planar approximation holds for
one city at a fixed latitude and is not corrected for longitude.

# Modes

  - fast: simplified source geometry, 4 segments per quadrant, coarse output
  - balanced: simplified source geometry, 6 segments, finer output
  - accurate: full source geometry, 8 segments, no output simplification

# Results

Calculate returns one of three result variants:

  - Success carries both geometries and the location counts
  - FallbackNeeded reports a topology failure in union or difference
  - Cancelled reports that the context was cancelled or the call was superseded

Callers switch on the concrete type; FallbackUsed is true only for
FallbackNeeded. An uninitialized store and unexpected engine failures are
returned as errors.

# Single flight

Coordinator allows one calculation in flight. A new call cancels the
previous one and waits for it to return before it starts, so the most
recent request always wins and stale results are never delivered.
*/
package zones
