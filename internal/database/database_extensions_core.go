// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/clubzones/internal/logging"
)

// extensionContext returns a context with timeout for extension operations
func extensionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// extensionSpec defines the specification for installing a DuckDB extension
type extensionSpec struct {
	// Name is the extension name (e.g., "spatial", "httpfs")
	Name string
	// VerifyQuery is an optional SQL query to verify the extension is working
	VerifyQuery string
	// AvailabilityField is a pointer to the DB field tracking availability
	AvailabilityField func(*DB) *bool
	// WarningMessage is shown when extension is unavailable (optional mode only)
	WarningMessage string
}

// installCoreExtension installs a core extension using the standard pattern
// Uses retry logic for INSTALL commands to handle transient network failures
func (db *DB) installCoreExtension(spec *extensionSpec, optional bool) error {
	if isExtensionInstalledLocally(db.extensionRoot(), spec.Name) {
		// A local copy loads without touching the network.
		if err := db.execWithHardTimeout(fmt.Sprintf("LOAD %s;", spec.Name)); err == nil {
			logging.Debug().Str("extension", spec.Name).Msg("Extension found locally, skipping download")
			return db.verifyExtension(spec, optional)
		}
	}

	var installErr error

	// Step 1: Try INSTALL with retry for transient failures
	if err := db.execWithRetry(fmt.Sprintf("INSTALL %s;", spec.Name), defaultRetryConfig); err != nil {
		installErr = err
		// Step 2: Try LOAD (may already be installed)
		if loadErr := db.execWithHardTimeout(fmt.Sprintf("LOAD %s;", spec.Name)); loadErr != nil {
			// Step 3: Try FORCE INSTALL with retry
			if forceErr := db.execWithRetry(fmt.Sprintf("FORCE INSTALL %s;", spec.Name), defaultRetryConfig); forceErr != nil {
				if optional {
					db.setExtensionUnavailable(spec)
					return nil
				}
				return fmt.Errorf("failed to install %s extension after retries: install error: %w, load error: %w, force install error: %w",
					spec.Name, installErr, loadErr, forceErr)
			}
		} else {
			return db.verifyExtension(spec, optional)
		}
	}

	// Step 4: Load the extension (only reached if INSTALL or FORCE INSTALL succeeded)
	if err := db.execWithHardTimeout(fmt.Sprintf("LOAD %s;", spec.Name)); err != nil {
		if optional {
			db.setExtensionUnavailable(spec)
			logging.Warn().Str("extension", spec.Name).Err(err).Msg("Failed to load extension")
			return nil
		}
		return fmt.Errorf("failed to load %s extension: %w", spec.Name, err)
	}

	return db.verifyExtension(spec, optional)
}

// setExtensionUnavailable marks an extension as unavailable and logs warning
func (db *DB) setExtensionUnavailable(spec *extensionSpec) {
	if field := spec.AvailabilityField; field != nil {
		*field(db) = false
	}
	if spec.WarningMessage != "" {
		logging.Warn().Str("extension", spec.Name).Msg(spec.WarningMessage)
	}
}

// setExtensionAvailable marks an extension as available
func (db *DB) setExtensionAvailable(spec *extensionSpec) {
	if field := spec.AvailabilityField; field != nil {
		*field(db) = true
	}
}

// verifyExtension runs the spec's verify query, if any, and records availability.
// Uses queryRowWithHardTimeout because CGO calls don't respect context cancellation
func (db *DB) verifyExtension(spec *extensionSpec, optional bool) error {
	if spec.VerifyQuery == "" {
		db.setExtensionAvailable(spec)
		return nil
	}

	if _, err := db.queryRowWithHardTimeout(spec.VerifyQuery); err != nil {
		if optional {
			db.setExtensionUnavailable(spec)
			logging.Warn().Str("extension", spec.Name).Err(err).Msg("Extension functions unavailable")
			return nil
		}
		return fmt.Errorf("%s extension loaded but functions unavailable: %w", spec.Name, err)
	}

	db.setExtensionAvailable(spec)
	return nil
}

// detectMakeValid checks whether the loaded spatial build ships ST_MakeValid.
// Geometry repair skips that step when it does not.
func (db *DB) detectMakeValid() {
	result, err := db.queryRowWithHardTimeout("SELECT COUNT(*) FROM duckdb_functions() WHERE lower(function_name) = 'st_makevalid'")
	if err != nil {
		logging.Debug().Err(err).Msg("Could not detect ST_MakeValid")
		db.makeValidAvailable = false
		return
	}

	switch n := result.(type) {
	case int64:
		db.makeValidAvailable = n > 0
	case int32:
		db.makeValidAvailable = n > 0
	default:
		db.makeValidAvailable = false
	}

	logging.Debug().Bool("make_valid", db.makeValidAvailable).Msg("Geometry repair capabilities detected")
}
