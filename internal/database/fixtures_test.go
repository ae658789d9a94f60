// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package database

import (
	"github.com/paulmach/osm"

	"github.com/tomtom215/clubzones/internal/models"
)

// berlinViewport covers the fixture's Mitte cluster but not Potsdam.
var berlinViewport = models.BoundingBox{West: 13.39, South: 52.51, East: 13.42, North: 52.53}

func tags(kv ...string) osm.Tags {
	t := make(osm.Tags, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func wayNodes(ids ...osm.NodeID) osm.WayNodes {
	wn := make(osm.WayNodes, len(ids))
	for i, id := range ids {
		wn[i] = osm.WayNode{ID: id}
	}
	return wn
}

// fixtureOSM returns a small document:
//   - node 1: school point in Mitte
//   - node 2: kindergarten point in Mitte
//   - way 100: playground square in Mitte (vertices 10..13)
//   - way 101: path line in Mitte, tagged as a sports centre
//   - node 3: school in Potsdam, outside berlinViewport
//   - way 102: untagged way (relation member)
//   - way 103: way whose refs all dangle (row error)
func fixtureOSM() *osm.OSM {
	return &osm.OSM{
		Nodes: osm.Nodes{
			{ID: 1, Lat: 52.520, Lon: 13.405, Tags: tags("amenity", "school", "name", "Grundschule am Park")},
			{ID: 2, Lat: 52.522, Lon: 13.410, Tags: tags("amenity", "kindergarten", "name", "Kita Sonnenschein")},
			{ID: 3, Lat: 52.400, Lon: 13.060, Tags: tags("amenity", "school", "name", "Schule Potsdam")},
			{ID: 10, Lat: 52.515, Lon: 13.395},
			{ID: 11, Lat: 52.515, Lon: 13.397},
			{ID: 12, Lat: 52.517, Lon: 13.397},
			{ID: 13, Lat: 52.517, Lon: 13.395},
			{ID: 20, Lat: 52.525, Lon: 13.400},
			{ID: 21, Lat: 52.526, Lon: 13.402},
			{ID: 22, Lat: 52.527, Lon: 13.401},
		},
		Ways: osm.Ways{
			{ID: 100, Nodes: wayNodes(10, 11, 12, 13, 10), Tags: tags("leisure", "playground", "name", "Spielplatz")},
			{ID: 101, Nodes: wayNodes(20, 21, 22), Tags: tags("leisure", "sports_centre")},
			{ID: 102, Nodes: wayNodes(10, 11)},
			{ID: 103, Nodes: wayNodes(900, 901), Tags: tags("amenity", "school")},
		},
	}
}

// bowtieOSM holds one self-intersecting polygon: a figure eight whose
// edges cross at (13.406, 52.521).
func bowtieOSM() *osm.OSM {
	return &osm.OSM{
		Nodes: osm.Nodes{
			{ID: 1, Lat: 52.520, Lon: 13.405},
			{ID: 2, Lat: 52.522, Lon: 13.407},
			{ID: 3, Lat: 52.520, Lon: 13.407},
			{ID: 4, Lat: 52.522, Lon: 13.405},
		},
		Ways: osm.Ways{
			{ID: 500, Nodes: wayNodes(1, 2, 3, 4, 1), Tags: tags("amenity", "school", "name", "Bowtie School")},
		},
	}
}

// searchOSM holds names chosen to exercise search ranking.
func searchOSM() *osm.OSM {
	names := []string{"Park Schule", "Parkschule", "Schule am Park", "park", "Kita Park", "Zoo"}
	nodes := make(osm.Nodes, 0, len(names))
	for i, n := range names {
		nodes = append(nodes, &osm.Node{
			ID:   osm.NodeID(i + 1),
			Lat:  52.52 + float64(i)*0.001,
			Lon:  13.40,
			Tags: tags("amenity", "school", "name", n),
		})
	}
	return &osm.OSM{Nodes: nodes}
}
