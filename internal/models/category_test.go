// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tags map[string]string
		want Category
	}{
		{"amenity school", map[string]string{"amenity": "school"}, CategorySchool},
		{"amenity kindergarten", map[string]string{"amenity": "kindergarten"}, CategoryKindergarten},
		{"leisure playground", map[string]string{"leisure": "playground"}, CategoryPlayground},
		{"community centre", map[string]string{"amenity": "community_centre"}, CategoryCommunityCentre},
		{"sports centre", map[string]string{"leisure": "sports_centre"}, CategorySportsCentre},
		{"fitness centre", map[string]string{"leisure": "fitness_centre"}, CategoryFitnessCentre},
		{"building school", map[string]string{"building": "school"}, CategorySchool},
		{"building kindergarten", map[string]string{"building": "kindergarten"}, CategoryKindergarten},
		{"amenity wins over leisure", map[string]string{"leisure": "playground", "amenity": "kindergarten"}, CategoryKindergarten},
		{"amenity wins over building", map[string]string{"building": "school", "amenity": "community_centre"}, CategoryCommunityCentre},
		{"unmatched", map[string]string{"amenity": "cafe"}, CategoryOther},
		{"empty", map[string]string{}, CategoryOther},
		{"nil", nil, CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.tags); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range AllCategories() {
		if got := ParseCategory(string(c)); got != c {
			t.Errorf("ParseCategory(%q) = %q", c, got)
		}
	}
	if got := ParseCategory("library"); got != CategoryOther {
		t.Errorf("ParseCategory(library) = %q, want other", got)
	}
}
