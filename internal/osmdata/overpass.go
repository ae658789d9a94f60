// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package osmdata

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/logging"
)

// overpassResponse is the Overpass API JSON envelope.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Nodes    []int64           `json:"nodes"`
	Geometry []overpassLatLon  `json:"geometry"` // present with "out geom"
	Tags     map[string]string `json:"tags"`
}

type overpassLatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func decodeOverpass(r io.Reader) (*osm.OSM, error) {
	var resp overpassResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode Overpass JSON: %w", err)
	}

	data := &osm.OSM{}
	var ignored int
	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			data.Nodes = append(data.Nodes, &osm.Node{
				ID:   osm.NodeID(el.ID),
				Lat:  el.Lat,
				Lon:  el.Lon,
				Tags: tagsFromMap(el.Tags),
			})
		case "way":
			data.Ways = append(data.Ways, &osm.Way{
				ID:    osm.WayID(el.ID),
				Nodes: wayNodes(el),
				Tags:  tagsFromMap(el.Tags),
			})
		default:
			ignored++
		}
	}
	if ignored > 0 {
		logging.Debug().Int("ignored", ignored).Msg("Skipped Overpass elements that are neither nodes nor ways")
	}
	return data, nil
}

// wayNodes pairs node refs with inline geometry when the response has it.
func wayNodes(el overpassElement) osm.WayNodes {
	n := len(el.Nodes)
	if n == 0 {
		n = len(el.Geometry)
	}
	out := make(osm.WayNodes, n)
	for i := range out {
		if i < len(el.Nodes) {
			out[i].ID = osm.NodeID(el.Nodes[i])
		}
		if i < len(el.Geometry) {
			out[i].Lat = el.Geometry[i].Lat
			out[i].Lon = el.Geometry[i].Lon
		}
	}
	return out
}

func tagsFromMap(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	tags.SortByKeyValue()
	return tags
}
