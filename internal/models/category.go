// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

// Category is the closed set of sensitive location kinds.
type Category string

const (
	CategorySchool          Category = "school"
	CategoryKindergarten    Category = "kindergarten"
	CategoryPlayground      Category = "playground"
	CategoryCommunityCentre Category = "community_centre"
	CategorySportsCentre    Category = "sports_centre"
	CategoryFitnessCentre   Category = "fitness_centre"
	CategoryOther           Category = "other"
)

// categoryRule maps a single tag key/value pair to a category.
type categoryRule struct {
	key      string
	value    string
	category Category
}

// categoryRules are evaluated in order; the first match wins.
var categoryRules = []categoryRule{
	{key: "amenity", value: "school", category: CategorySchool},
	{key: "amenity", value: "kindergarten", category: CategoryKindergarten},
	{key: "leisure", value: "playground", category: CategoryPlayground},
	{key: "amenity", value: "community_centre", category: CategoryCommunityCentre},
	{key: "leisure", value: "sports_centre", category: CategorySportsCentre},
	{key: "leisure", value: "fitness_centre", category: CategoryFitnessCentre},
	{key: "building", value: "school", category: CategorySchool},
	{key: "building", value: "kindergarten", category: CategoryKindergarten},
}

// Classify returns the category for a set of OSM tags. Unmatched tags
// classify as CategoryOther, so every location has exactly one category.
func Classify(tags map[string]string) Category {
	for _, rule := range categoryRules {
		if tags[rule.key] == rule.value {
			return rule.category
		}
	}
	return CategoryOther
}

// AllCategories lists every category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategorySchool,
		CategoryKindergarten,
		CategoryPlayground,
		CategoryCommunityCentre,
		CategorySportsCentre,
		CategoryFitnessCentre,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts stored text into a Category, mapping unknown
// values to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(s)
	if !c.IsValid() {
		return CategoryOther
	}
	return c
}
