// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package engine owns the spatial store and the zone calculator for one
process.

Lifecycle:

	eng := engine.New(cfg, db, engine.WithBus(bus))
	if err := eng.Init(ctx, engine.Source{SnapshotLocator: loc, OSMFile: path}); err != nil {
		// neither the snapshot nor the OSM file could be loaded
	}
	defer eng.Close()

Init tries the snapshot first and falls back to ingesting the OSM file.
Ingestion takes the write side of an RWMutex; calculations and queries take
the read side, so a dataset is never replaced under a running calculation.
Engine.Calculate goes through a process-wide single-flight coordinator;
NewCoordinator hands out independent ones for callers such as WebSocket
sessions that need their own most-recent-wins stream.

After Close every method returns ErrEngineClosed.
*/
package engine
