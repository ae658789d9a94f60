// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import "time"

// Stage is a calculation milestone.
type Stage string

const (
	StagePrefilter  Stage = "prefilter"
	StageUnion      Stage = "union"
	StageDifference Stage = "difference"
)

// Progress is reported once per stage.
type Progress struct {
	Locations int           // locations in scope after the stage
	Fraction  float64       // rough completion in [0, 1]
	Elapsed   time.Duration // since the calculation started
}

// ProgressFunc receives milestones. It runs on the calculating goroutine
// and must not block.
type ProgressFunc func(Stage, Progress)

var stageFraction = map[Stage]float64{
	StagePrefilter:  0.2,
	StageUnion:      0.8,
	StageDifference: 1,
}

func report(fn ProgressFunc, stage Stage, locations int, start time.Time) {
	if fn == nil {
		return
	}
	fn(stage, Progress{
		Locations: locations,
		Fraction:  stageFraction[stage],
		Elapsed:   time.Since(start),
	})
}
