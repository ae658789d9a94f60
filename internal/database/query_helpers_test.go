// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import "testing"

func TestBlobValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "(?::BLOB)"},
		{3, "(?::BLOB), (?::BLOB), (?::BLOB)"},
	}
	for _, tt := range tests {
		if got := blobValues(tt.n); got != tt.want {
			t.Errorf("blobValues(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatCoord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{13.405, "13.405"},
		{-0.000001, "-0.000001"},
		{180, "180"},
		{52.52000000000001, "52.52000000000001"},
	}
	for _, tt := range tests {
		if got := formatCoord(tt.in); got != tt.want {
			t.Errorf("formatCoord(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"/data/locations.parquet", "'/data/locations.parquet'"},
		{"/tmp/o'brien.parquet", "'/tmp/o''brien.parquet'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := quoteLiteral(tt.in); got != tt.want {
			t.Errorf("quoteLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
