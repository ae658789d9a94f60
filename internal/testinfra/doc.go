// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

// Package testinfra provides test infrastructure for DuckDB-backed tests.
//
// Most store, calculator and engine tests need the DuckDB spatial extension.
// Where it cannot be installed the tests skip, and SpatialMain prints how
// many did so the gap shows up in the test output:
//
//	func TestMain(m *testing.M) {
//	    testinfra.SpatialMain(m)
//	}
//
//	func TestSomething(t *testing.T) {
//	    db, err := database.New(testinfra.DatabaseConfig())
//	    ...
//	    testinfra.RequireSpatial(t, db.IsSpatialAvailable())
//	}
//
// # CI Considerations
//
// Set CLUBZONES_REQUIRE_SPATIAL=true to turn every spatial skip into a
// failure. For runners without network access, pre-populate a directory with
// {version}/{platform}/spatial.duckdb_extension and point
// DUCKDB_EXTENSION_DIRECTORY at it; DatabaseConfig passes it on to the store.
package testinfra
