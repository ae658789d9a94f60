// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Store:
  - duckdb_query_duration_seconds{operation}
  - duckdb_query_errors_total{operation,error_type}
  - ingest_rows_total{result}
  - stored_locations
  - snapshot_loads_total{result}
  - geometry_repairs_total{method}

Zone calculations:
  - zone_calculations_total{mode,outcome}
  - zone_calculation_duration_seconds{mode}
  - zone_locations_considered

HTTP and sessions:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_received_total, websocket_errors_total

Resilience and events:
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
  - events_published_total{topic}
*/
package metrics
