// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: UUID request IDs and correlation IDs in the logging context
  - PrometheusMetrics: request counters and latency histograms labelled by
    chi route pattern, so path parameters never become label values

Both are func(http.Handler) http.Handler and are installed with chi's
r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Headers:

  - X-Request-ID: preserved when the client sends one, generated otherwise,
    and echoed in the response
  - X-Correlation-ID: preserved when present so a caller can tie several
    requests together in the logs
*/
package middleware
