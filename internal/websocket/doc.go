// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package websocket serves interactive zone sessions over gorilla/websocket.

A map client opens one session and sends a calculate message every time
the viewport or the buffer changes. Each session owns a single-flight
coordinator, so a new message cancels the calculation still running for
the previous one and only the latest request produces a zones message.

Architecture:

	┌──────────┐
	│   Hub    │ ← dataset_replaced fan-out, shutdown
	└────┬─────┘
	     │
	┌────┴─────┬──────────┬──────────┐
	│ Session1 │ Session2 │ Session3 │  each with its own Coordinator
	└──────────┴──────────┴──────────┘

Each session has two goroutines:
  - readPump: decodes client messages, throttles calculate requests
  - writePump: writes queued messages, sends pings

Client messages:

	{"type":"calculate","data":{"viewport":{...},"buffer":200,"mode":"fast"}}
	{"type":"ping"}

Server messages:

  - progress: stage, fraction and locations of the running calculation
  - zones: GeoJSON restricted and eligible features with counts
  - fallback: the overlay failed with a topology error, use the fallback path
  - cancelled: the request was superseded or the session closed
  - error: validation, throttling or store failure with a code
  - dataset_replaced: the location set changed; the last request is recomputed
  - pong

Calculate messages beyond the configured rate are answered with an error
message with code RATE_LIMITED and are not executed.
*/
package websocket
