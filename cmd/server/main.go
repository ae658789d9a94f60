// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/tomtom215/clubzones/internal/api"
	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/database"
	"github.com/tomtom215/clubzones/internal/engine"
	"github.com/tomtom215/clubzones/internal/events"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/supervisor"
	"github.com/tomtom215/clubzones/internal/supervisor/services"
	ws "github.com/tomtom215/clubzones/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	exportPath := flag.String("export-snapshot", "", "load the location set, write it as a parquet snapshot to this path and exit")
	flag.Parse()

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("snapshot", cfg.Data.SnapshotLocator).
		Str("osm_file", cfg.Data.OSMFile).
		Str("default_mode", cfg.Zones.DefaultMode).
		Msg("Starting clubzones")

	if err := run(cfg, *exportPath); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, exportPath string) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	// The engine does not own the store; close it last.
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	eng := engine.New(cfg, db, engine.WithBus(bus))
	defer func() {
		if err := eng.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing engine")
		}
	}()

	src := engine.Source{
		SnapshotLocator: cfg.Data.SnapshotLocator,
		OSMFile:         cfg.Data.OSMFile,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if exportPath != "" {
		return exportSnapshot(ctx, eng, src, exportPath)
	}
	return serve(ctx, cfg, eng, bus, src)
}

func exportSnapshot(ctx context.Context, eng *engine.Engine, src engine.Source, path string) error {
	if err := eng.Init(ctx, src); err != nil {
		return fmt.Errorf("failed to load location set: %w", err)
	}
	if err := eng.ExportSnapshot(ctx, path); err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	logging.Info().Str("path", path).Msg("Snapshot exported")
	return nil
}

func serve(ctx context.Context, cfg *config.Config, eng *engine.Engine, bus *events.Bus, src engine.Source) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewComponentSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	hub := ws.NewHub(ws.HubConfig{
		Zones:             cfg.Zones,
		MessagesPerSecond: rate.Limit(cfg.Security.SessionMessagesPerSecond),
		Burst:             cfg.Security.SessionBurst,
	}, func() ws.Calculator { return eng.NewCoordinator() })

	forwarder := events.NewForwarder(bus)
	forwarder.Register(hub)

	handler := api.NewHandler(eng, hub, cfg, version)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree.AddDataService(services.NewDatasetLoaderService(eng, src))
	tree.AddMessagingService(forwarder)
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// errCh receives exactly one value and is never closed.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Stopped gracefully")
	return nil
}
