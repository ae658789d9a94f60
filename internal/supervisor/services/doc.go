// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package services adapts blocking components to suture.Service.
//
// events.Forwarder and websocket.Hub already implement Serve(ctx) and are
// added to the tree directly.
package services
