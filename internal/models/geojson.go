// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package models

import (
	"github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// goccyJSON routes orb's GeoJSON encoding through goccy/go-json.
type goccyJSON struct{}

func (goccyJSON) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (goccyJSON) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func init() {
	geojson.CustomJSONMarshaler = goccyJSON{}
	geojson.CustomJSONUnmarshaler = goccyJSON{}
}

// Feature kinds set in the "kind" property of zone features.
const (
	FeatureKindRestricted = "restricted"
	FeatureKindEligible   = "eligible"
	FeatureKindLocation   = "location"
)

// LocationsFeatureCollection renders locations as GeoJSON features with
// their full geometry.
func LocationsFeatureCollection(locs []SensitiveLocation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range locs {
		loc := &locs[i]
		if loc.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(loc.Geometry)
		f.ID = loc.ID
		f.Properties["kind"] = FeatureKindLocation
		f.Properties["external_id"] = loc.ExternalID
		f.Properties["category"] = string(loc.Category)
		f.Properties["valid"] = loc.Valid
		if loc.Name != "" {
			f.Properties["name"] = loc.Name
		}
		fc.Append(f)
	}
	return fc
}
