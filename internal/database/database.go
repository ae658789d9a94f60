// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/logging"
)

// DB wraps the DuckDB connection holding the sensitive location set and
// provides the spatial store operations.
type DB struct {
	conn               *sql.DB
	cfg                *config.DatabaseConfig
	spatialAvailable   bool // Tracks whether spatial extension is loaded
	httpfsAvailable    bool // Tracks whether httpfs is loaded (remote snapshot URLs)
	makeValidAvailable bool // ST_MakeValid is missing from older spatial builds

	// indexQueries replaces the built-in index DDL when set (tests).
	indexQueries []string

	// stateMu guards the dataset flags. Schema replacement itself is
	// serialized by the engine.
	stateMu           sync.RWMutex
	ready             bool
	snapshotLoaded    bool
	simplifyTolerance float64
}

// New opens a DuckDB connection, loads the spatial extension and creates the
// empty location schema. The store is not ready until an ingestion or a
// snapshot load completes.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != "" && cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	// Extensions are explicitly loaded by installExtensions() with proper timeout handling
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:             conn,
		cfg:              cfg,
		spatialAvailable: true,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.enableProfiling(); err != nil {
		logging.Warn().Err(err).Msg("Query profiling not enabled")
	}

	return db, nil
}

// configureConnectionPool sizes the database/sql pool. All pooled
// connections share the same DuckDB instance, including :memory: ones.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// initialize installs extensions and creates the empty schema
func (db *DB) initialize() error {
	if err := db.installExtensions(); err != nil {
		return err
	}

	if !db.spatialAvailable {
		logging.Warn().Msg("Spatial extension unavailable, store operations will return ErrSpatialUnavailable")
		return nil
	}

	db.detectMakeValid()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return db.createSchema(ctx)
}

// IsSpatialAvailable returns whether the spatial extension is available
func (db *DB) IsSpatialAvailable() bool {
	return db.spatialAvailable
}

// IsHTTPFSAvailable returns whether read_parquet can read http(s) URLs directly
func (db *DB) IsHTTPFSAvailable() bool {
	return db.httpfsAvailable
}

// IsReady reports whether a dataset has been loaded.
func (db *DB) IsReady() bool {
	db.stateMu.RLock()
	defer db.stateMu.RUnlock()
	return db.ready
}

// IsSnapshotLoaded reports whether the current dataset came from a snapshot.
func (db *DB) IsSnapshotLoaded() bool {
	db.stateMu.RLock()
	defer db.stateMu.RUnlock()
	return db.snapshotLoaded
}

func (db *DB) setState(ready, snapshot bool) {
	db.stateMu.Lock()
	db.ready = ready
	db.snapshotLoaded = snapshot
	db.stateMu.Unlock()
}

// checkReady returns the error a query should fail with, if any.
func (db *DB) checkReady() error {
	if !db.spatialAvailable {
		return ErrSpatialUnavailable
	}
	if !db.IsReady() {
		return ErrNotInitialized
	}
	return nil
}

// Close releases the DuckDB connection. The location set is memory-only
// with the default path, so there is nothing to flush.
func (db *DB) Close() error {
	db.setState(false, false)
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}
