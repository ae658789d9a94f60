// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package osmdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/tomtom215/clubzones/internal/logging"
)

// ErrUnsupportedFormat is returned for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported OSM file format")

// scanner is the common surface of osmxml.Scanner and osmpbf.Scanner.
type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// LoadFile reads the nodes and ways of an OSM XML, PBF or Overpass JSON file.
func LoadFile(ctx context.Context, path string) (*osm.OSM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSM file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close OSM file")
		}
	}()

	start := time.Now()
	data, err := Decode(ctx, f, Format(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Info().
		Str("path", path).
		Int("nodes", len(data.Nodes)).
		Int("ways", len(data.Ways)).
		Dur("duration", time.Since(start)).
		Msg("OSM file decoded")
	return data, nil
}

// Format returns the format name for path: "xml", "pbf", "json" or "".
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return "xml"
	case ".pbf":
		return "pbf"
	case ".json":
		return "json"
	}
	return ""
}

// Decode reads r in the given format.
func Decode(ctx context.Context, r io.Reader, format string) (*osm.OSM, error) {
	switch format {
	case "xml":
		return scan(ctx, osmxml.New(ctx, r))
	case "pbf":
		s := osmpbf.New(ctx, r, runtime.GOMAXPROCS(-1))
		s.SkipRelations = true
		return scan(ctx, s)
	case "json":
		return decodeOverpass(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func scan(ctx context.Context, s scanner) (*osm.OSM, error) {
	defer func() {
		if err := s.Close(); err != nil {
			logging.Debug().Err(err).Msg("OSM scanner close failed")
		}
	}()

	data := &osm.OSM{}
	for s.Scan() {
		switch o := s.Object().(type) {
		case *osm.Node:
			data.Nodes = append(data.Nodes, o)
		case *osm.Way:
			data.Ways = append(data.Ways, o)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan OSM data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
