// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"fmt"
	"strings"

	"github.com/tomtom215/clubzones/internal/config"
)

// Mode trades output fidelity for speed.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeBalanced Mode = "balanced"
	ModeAccurate Mode = "accurate"
)

// Default output simplification tolerances in degrees.
const (
	DefaultFastTolerance     = 1e-4
	DefaultBalancedTolerance = 2e-5
)

// ParseMode parses a mode name case-insensitively. An empty string is an
// error; callers apply their own default first.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q: must be one of fast, balanced, accurate", s)
	}
	return m, nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeFast, ModeBalanced, ModeAccurate:
		return true
	}
	return false
}

// modeParams are the knobs a mode selects.
type modeParams struct {
	simplifiedSource bool    // read the precomputed simplified geometry
	segments         int     // buffer quadrant segments
	tolerance        float64 // output simplification, 0 disables
}

func paramsFor(m Mode, cfg config.ZonesConfig) modeParams {
	switch m {
	case ModeFast:
		tol := cfg.FastTolerance
		if tol <= 0 {
			tol = DefaultFastTolerance
		}
		return modeParams{simplifiedSource: true, segments: 4, tolerance: tol}
	case ModeBalanced:
		tol := cfg.BalancedTolerance
		if tol <= 0 {
			tol = DefaultBalancedTolerance
		}
		return modeParams{simplifiedSource: true, segments: 6, tolerance: tol}
	default:
		return modeParams{segments: 8}
	}
}
