// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("buffer_union", "topology"))

	RecordDBQuery("buffer_union", 10*time.Millisecond, nil)
	RecordDBQuery("buffer_union", 20*time.Millisecond, errors.New("TopologyException: side location conflict"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("buffer_union", "topology"))
	if after-before != 1 {
		t.Errorf("topology errors increased by %v, want 1", after-before)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"GEOS TopologyException: found non-noded intersection", "topology"},
		{"context deadline exceeded", "timeout"},
		{"INTERRUPT Error: Interrupted!", "cancelled"},
		{"Catalog Error: Scalar Function with name st_makevalid does not exist", "catalog"},
		{"Invalid Input Error: WKB", "input"},
		{"something else", "other"},
	}

	for _, tt := range tests {
		if got := classifyError(tt.msg); got != tt.want {
			t.Errorf("classifyError(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestRecordZoneCalculation(t *testing.T) {
	before := testutil.ToFloat64(ZoneCalculations.WithLabelValues("fast", "cancelled"))
	RecordZoneCalculation("fast", "cancelled", time.Millisecond, 0)
	if got := testutil.ToFloat64(ZoneCalculations.WithLabelValues("fast", "cancelled")) - before; got != 1 {
		t.Errorf("cancelled count delta = %v, want 1", got)
	}
}

func TestRecordIngest(t *testing.T) {
	RecordIngest(7, 1, 2)
	if got := testutil.ToFloat64(StoredLocations); got != 7 {
		t.Errorf("stored_locations = %v, want 7", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
}
