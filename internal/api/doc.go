// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package api provides the HTTP API of the zone engine.

Routes are served by chi with go-chi/cors and go-chi/httprate. Every JSON
response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","request_id":"..."}}
	{"status":"error","data":null,"error":{"code":"VALIDATION_ERROR","message":"..."},"metadata":{...}}

Endpoints:

	GET /api/v1/zones?west=&south=&east=&north=&buffer=&mode=
	GET /api/v1/zones/ws
	GET /api/v1/locations?west=&south=&east=&north=
	GET /api/v1/search?q=&limit=
	GET /api/v1/stats
	GET /health/live
	GET /health/ready
	GET /metrics

Status codes:

  - 200: success; a topology fallback is still 200 with fallback_used=true
  - 400: VALIDATION_ERROR
  - 409: CALCULATION_CANCELLED, a newer calculation superseded this one
  - 504: TIMEOUT, the calculation exceeded the request timeout
  - 503: NOT_INITIALIZED before the location set is loaded, or the engine
    is shutting down
  - 500: INTERNAL_ERROR

Zone calculations done over HTTP share the engine's process-wide
coordinator; interactive clients should use the WebSocket session, which
has one coordinator per connection.
*/
package api
