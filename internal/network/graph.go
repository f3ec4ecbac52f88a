// Package network derives a street graph from line geometries or OSM
// data and answers shortest-path queries. Nodes are intersections and
// segment endpoints, edges carry the segment length as weight. The
// search itself is gonum's Dijkstra, not ours.
package network

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
)

// Graph is an undirected street network with weighted edges. The
// distance metric is fixed at build time and shared by edge weights
// and nearest-node queries.
type Graph struct {
	g        *simple.WeightedUndirectedGraph
	coords   map[int64]orb.Point
	ids      map[orb.Point]int64
	nextID   int64
	distance func(a, b orb.Point) float64
}

func newGraph(distance func(a, b orb.Point) float64) *Graph {
	return &Graph{
		g:        simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		coords:   make(map[int64]orb.Point),
		ids:      make(map[orb.Point]int64),
		distance: distance,
	}
}

// Len returns the node count.
func (gr *Graph) Len() int { return len(gr.coords) }

// Coord returns the coordinates of a node.
func (gr *Graph) Coord(id int64) (orb.Point, error) {
	p, ok := gr.coords[id]
	if !ok {
		return orb.Point{}, &NotFoundError{What: fmt.Sprintf("node %d", id)}
	}
	return p, nil
}

func (gr *Graph) node(p orb.Point) int64 {
	if id, ok := gr.ids[p]; ok {
		return id
	}
	id := gr.nextID
	gr.nextID++
	gr.g.AddNode(simple.Node(id))
	gr.ids[p] = id
	gr.coords[id] = p
	return id
}

func (gr *Graph) addSegment(a, b orb.Point, length float64) {
	if a == b || length <= 0 {
		return
	}
	from := gr.node(a)
	to := gr.node(b)
	gr.g.SetWeightedEdge(gr.g.NewWeightedEdge(simple.Node(from), simple.Node(to), length))
}

// FromCollection extracts a graph from the line geometries of a
// collection. Lengths are geodesic meters for geographic coordinates
// and planar CRS units otherwise; non-line rows are skipped.
func FromCollection(c *feature.Collection) (*Graph, error) {
	distance := planar.Distance
	if c.CRS().EPSG() == crs.CodeWGS84 {
		distance = geo.Distance
	}

	gr := newGraph(distance)
	lines := 0
	for i := 0; i < c.Len(); i++ {
		switch g := c.Row(i).Geometry.(type) {
		case orb.LineString:
			gr.addLine(g)
			lines++
		case orb.MultiLineString:
			for _, ls := range g {
				gr.addLine(ls)
			}
			lines++
		}
	}
	if lines == 0 {
		return nil, fmt.Errorf("collection has no line geometries to build a network from")
	}

	log.Debug().
		Int("lines", lines).
		Int("nodes", gr.Len()).
		Msg("Network extracted from collection")

	return gr, nil
}

func (gr *Graph) addLine(ls orb.LineString) {
	for i := 1; i < len(ls); i++ {
		gr.addSegment(ls[i-1], ls[i], gr.distance(ls[i-1], ls[i]))
	}
}

// FromOSM reads OSM XML and keeps highway-tagged ways as edges.
// Coordinates are WGS84; weights are geodesic meters.
func FromOSM(ctx context.Context, r io.Reader) (*Graph, error) {
	scanner := osmxml.New(ctx, r)
	defer func() { _ = scanner.Close() }()

	nodes := make(map[osm.NodeID]orb.Point)
	var ways []*osm.Way

	for scanner.Scan() {
		switch v := scanner.Object().(type) {
		case *osm.Node:
			nodes[v.ID] = orb.Point{v.Lon, v.Lat}
		case *osm.Way:
			if v.Tags.Find("highway") != "" {
				ways = append(ways, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan OSM data: %w", err)
	}

	gr := newGraph(geo.Distance)
	for _, w := range ways {
		for i := 1; i < len(w.Nodes); i++ {
			a, okA := nodes[w.Nodes[i-1].ID]
			b, okB := nodes[w.Nodes[i].ID]
			if !okA || !okB {
				// way references a node outside the extract
				continue
			}
			gr.addSegment(a, b, geo.Distance(a, b))
		}
	}
	if gr.Len() == 0 {
		return nil, fmt.Errorf("OSM data contains no routable ways")
	}

	log.Debug().
		Int("ways", len(ways)).
		Int("nodes", gr.Len()).
		Msg("Network extracted from OSM data")

	return gr, nil
}

// NearestNode returns the graph node closest to a query coordinate,
// measured with the graph's own distance metric so projected graphs
// are ranked in planar units.
func (gr *Graph) NearestNode(x, y float64) (int64, error) {
	if len(gr.coords) == 0 {
		return 0, &NotFoundError{What: "nearest node (graph is empty)"}
	}
	query := orb.Point{x, y}
	best := int64(-1)
	bestDist := math.Inf(1)
	for id, p := range gr.coords {
		d := gr.distance(query, p)
		if d < bestDist || (d == bestDist && id < best) {
			best = id
			bestDist = d
		}
	}
	return best, nil
}

// ShortestPath runs a weighted shortest-path search between two nodes
// and returns the ordered node ids plus the total weight.
func (gr *Graph) ShortestPath(source, target int64) ([]int64, float64, error) {
	if gr.g.Node(source) == nil {
		return nil, 0, &NotFoundError{What: fmt.Sprintf("source node %d", source)}
	}
	if gr.g.Node(target) == nil {
		return nil, 0, &NotFoundError{What: fmt.Sprintf("target node %d", target)}
	}

	shortest := path.DijkstraFrom(gr.g.Node(source), gr.g)
	nodes, weight := shortest.To(target)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, &NoPathError{Source: source, Target: target}
	}

	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID())
	}
	return ids, weight, nil
}

// Lines renders the edge set as a feature collection (WGS84 for OSM
// graphs; the caller knows the CRS for collection-derived graphs).
func (gr *Graph) Lines(c crs.CRS) (*feature.Collection, error) {
	schema := feature.Schema{{Name: "length", Kind: feature.KindNumber}}
	var rows []feature.Feature

	edges := gr.g.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		a := gr.coords[e.From().ID()]
		b := gr.coords[e.To().ID()]
		rows = append(rows, feature.Feature{
			Geometry: orb.LineString{a, b},
			Attrs:    map[string]any{"length": e.Weight()},
		})
	}

	return feature.FromFeatures(schema, c, rows)
}
