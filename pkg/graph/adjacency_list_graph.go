package graph

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/climatenav/navigator/pkg/geometry"
	"github.com/climatenav/navigator/pkg/road"
)

// AdjacencyListGraph is the mutable build-time form of the road graph. It is
// only used while importing a road dataset; queries run against the frozen
// AdjacencyArrayGraph produced from it.
type AdjacencyListGraph struct {
	Nodes     []orb.Point
	Edges     [][]Edge // outgoing edges per node
	edgeCount int
}

func NewAdjacencyListGraph() *AdjacencyListGraph {
	return &AdjacencyListGraph{}
}

func (alg *AdjacencyListGraph) GetNode(id NodeId) orb.Point {
	return alg.Nodes[id]
}

func (alg *AdjacencyListGraph) GetNodes() []orb.Point {
	return alg.Nodes
}

func (alg *AdjacencyListGraph) GetEdgesFrom(id NodeId) []Edge {
	return alg.Edges[id]
}

func (alg *AdjacencyListGraph) NodeCount() int {
	return len(alg.Nodes)
}

func (alg *AdjacencyListGraph) EdgeCount() int {
	return alg.edgeCount
}

func (alg *AdjacencyListGraph) AddNode(p orb.Point) NodeId {
	alg.Nodes = append(alg.Nodes, p)
	alg.Edges = append(alg.Edges, nil)
	return len(alg.Nodes) - 1
}

// EdgeSpec carries the road attributes of an edge being added. Length and
// travel time are derived from the geometry and speed.
type EdgeSpec struct {
	Geometry orb.LineString
	SpeedKmh float64
	Class    road.Class
	Surface  string
	Name     string
	WayID    int64
}

func (alg *AdjacencyListGraph) AddEdge(from, to NodeId, spec EdgeSpec) error {
	if from < 0 || from >= alg.NodeCount() || to < 0 || to >= alg.NodeCount() {
		return eris.Errorf("graph: edge endpoints %d -> %d out of range (%d nodes)", from, to, alg.NodeCount())
	}
	if len(spec.Geometry) < 2 {
		return eris.Errorf("graph: edge %d -> %d has no geometry", from, to)
	}
	if spec.SpeedKmh <= 0 {
		return eris.Errorf("graph: edge %d -> %d has non-positive speed %v", from, to, spec.SpeedKmh)
	}

	length := geometry.PolylineLength(spec.Geometry)
	alg.Edges[from] = append(alg.Edges[from], Edge{
		From:              from,
		To:                to,
		Geometry:          spec.Geometry,
		LengthMeters:      length,
		TravelTimeSeconds: length / (spec.SpeedKmh / 3.6),
		Class:             spec.Class,
		Surface:           spec.Surface,
		Name:              spec.Name,
		WayID:             spec.WayID,
	})
	alg.edgeCount++
	return nil
}
