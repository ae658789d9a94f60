// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package events carries dataset lifecycle events inside the process on a
// watermill gochannel pub/sub. The engine publishes DatasetReplaced after
// every successful ingestion; the Forwarder service fans events out to
// listeners such as live WebSocket sessions, which recompute their zones.
package events
