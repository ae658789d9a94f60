// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package zones

import (
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/tomtom215/clubzones/internal/models"
)

func TestNewZonesResponse(t *testing.T) {
	t.Parallel()

	stats := Stats{Mode: ModeBalanced, BufferMeters: 200, LocationCount: 2, ExcludedCount: 1, ProcessingTime: 1500 * time.Millisecond}
	square := testViewport.Polygon()

	tests := []struct {
		name         string
		res          Result
		wantKinds    []string
		wantFallback bool
		wantReason   string
	}{
		{
			name:      "success with restricted",
			res:       &Success{Restricted: orb.Polygon{{{13.405, 52.52}, {13.406, 52.52}, {13.406, 52.521}, {13.405, 52.52}}}, Eligible: square, stats: stats},
			wantKinds: []string{models.FeatureKindRestricted, models.FeatureKindEligible},
		},
		{
			name:      "success without locations",
			res:       &Success{Eligible: square, stats: stats},
			wantKinds: []string{models.FeatureKindEligible},
		},
		{
			name:         "fallback",
			res:          newFallback(stats, "TopologyException"),
			wantKinds:    []string{},
			wantFallback: true,
			wantReason:   "TopologyException",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewZonesResponse(tt.res)
			if len(resp.Features.Features) != len(tt.wantKinds) {
				t.Fatalf("len(Features) = %d, want %d", len(resp.Features.Features), len(tt.wantKinds))
			}
			for i, kind := range tt.wantKinds {
				if got := resp.Features.Features[i].Properties["kind"]; got != kind {
					t.Errorf("feature %d kind = %v, want %s", i, got, kind)
				}
			}
			if resp.FallbackUsed != tt.wantFallback || resp.FallbackReason != tt.wantReason {
				t.Errorf("fallback = %v/%q, want %v/%q", resp.FallbackUsed, resp.FallbackReason, tt.wantFallback, tt.wantReason)
			}
			if resp.Mode != "balanced" || resp.ProcessingTimeMS != 1500 {
				t.Errorf("Mode = %q ProcessingTimeMS = %d", resp.Mode, resp.ProcessingTimeMS)
			}
		})
	}
}
