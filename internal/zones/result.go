// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"time"

	"github.com/paulmach/orb"
)

// Outcome names a result variant. It is also the metrics label.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFallback  Outcome = "fallback"
	OutcomeCancelled Outcome = "cancelled"
)

// Stats describe one calculation regardless of its outcome.
type Stats struct {
	Mode         Mode
	BufferMeters float64

	// LocationCount is the number of locations whose buffers formed the
	// restricted area. ExcludedCount holds the ones dropped because their
	// geometry could not be repaired.
	LocationCount int
	ExcludedCount int

	ProcessingTime time.Duration
}

// Result is one of *Success, *FallbackNeeded or *Cancelled.
type Result interface {
	Outcome() Outcome
	Stats() Stats

	// FallbackUsed reports whether the caller should switch to an
	// alternative geometry path.
	FallbackUsed() bool

	isResult()
}

// Success holds the computed geometries. Restricted is nil when no location
// matched the viewport, in which case Eligible is the viewport polygon.
type Success struct {
	Restricted orb.Geometry
	Eligible   orb.Geometry
	stats      Stats
}

func (r *Success) Outcome() Outcome   { return OutcomeSuccess }
func (r *Success) Stats() Stats       { return r.stats }
func (r *Success) FallbackUsed() bool { return false }
func (*Success) isResult()            {}

// FallbackNeeded reports a topology failure the spatial engine could not
// reconcile. It carries no geometry and a zero location count.
type FallbackNeeded struct {
	Reason string
	stats  Stats
}

func (r *FallbackNeeded) Outcome() Outcome   { return OutcomeFallback }
func (r *FallbackNeeded) Stats() Stats       { return r.stats }
func (r *FallbackNeeded) FallbackUsed() bool { return true }
func (*FallbackNeeded) isResult()            {}

// Cancelled reports a calculation stopped by its context or superseded by
// a newer request.
type Cancelled struct {
	stats Stats
}

func (r *Cancelled) Outcome() Outcome   { return OutcomeCancelled }
func (r *Cancelled) Stats() Stats       { return r.stats }
func (r *Cancelled) FallbackUsed() bool { return false }
func (*Cancelled) isResult()            {}

func newFallback(s Stats, reason string) *FallbackNeeded {
	s.LocationCount = 0
	return &FallbackNeeded{Reason: reason, stats: s}
}

func newCancelled(s Stats) *Cancelled {
	return &Cancelled{stats: s}
}
