// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/clubzones/internal/engine"
	"github.com/tomtom215/clubzones/internal/logging"
)

// Initializer is satisfied by *engine.Engine.
type Initializer interface {
	Init(ctx context.Context, src engine.Source) error
}

// DatasetLoaderService loads the location set once. A failed load is
// returned to the supervisor, which retries it with backoff. After a
// successful load the service asks not to be restarted.
type DatasetLoaderService struct {
	engine Initializer
	source engine.Source
}

// NewDatasetLoaderService creates the loader for src.
func NewDatasetLoaderService(eng Initializer, src engine.Source) *DatasetLoaderService {
	return &DatasetLoaderService{engine: eng, source: src}
}

// Serve implements suture.Service.
func (s *DatasetLoaderService) Serve(ctx context.Context) error {
	start := time.Now()
	err := s.engine.Init(ctx, s.source)
	switch {
	case err == nil:
		logging.Info().
			Dur("duration", time.Since(start)).
			Msg("Location set loaded")
		return suture.ErrDoNotRestart
	case errors.Is(err, engine.ErrNoSource), errors.Is(err, engine.ErrEngineClosed):
		// Retrying cannot help.
		logging.Error().Err(err).Msg("Location set not loaded")
		return suture.ErrDoNotRestart
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("load location set: %w", err)
	}
}

// String implements fmt.Stringer for suture logs.
func (s *DatasetLoaderService) String() string {
	return "dataset-loader"
}
