// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package supervisor runs the long-lived services of the zone engine under a
suture v4 supervisor tree.

	root ("clubzones")
	├── data-layer
	│   └── DatasetLoaderService   one-shot engine.Init, retried with backoff
	├── messaging-layer
	│   ├── events.Forwarder       dataset events to listeners
	│   └── websocket.Hub          interactive zone sessions
	└── api-layer
	    └── HTTPServerService

A failing service is restarted by its own layer, so a crashing hub does
not take the HTTP server down. Supervisor events are logged through
sutureslog on top of the zerolog slog adapter:

	tree, err := supervisor.NewSupervisorTree(logging.NewComponentSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewDatasetLoaderService(eng, src))
	tree.AddMessagingService(forwarder)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
