package graph

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/climatenav/navigator/pkg/road"
)

type NodeId = int
type EdgeId = int

// Edge is one directed road segment between two graph nodes. Length and
// travel time are precomputed at build time; the geometry keeps the full
// polyline for hazard intersection tests and output rendering.
type Edge struct {
	ID                EdgeId
	From              NodeId
	To                NodeId
	Geometry          orb.LineString
	LengthMeters      float64
	TravelTimeSeconds float64
	Class             road.Class
	Surface           string
	Name              string
	WayID             int64
}

type Graph interface {
	GetNode(id NodeId) orb.Point
	GetNodes() []orb.Point
	GetEdge(id EdgeId) *Edge
	GetEdgesFrom(id NodeId) []Edge
	NodeCount() int
	EdgeCount() int
}

// Validate checks the structural invariants a graph must satisfy before it
// can serve queries: every edge references existing nodes and carries
// non-negative, finite length and travel time.
func Validate(g Graph) error {
	for i := 0; i < g.EdgeCount(); i++ {
		e := g.GetEdge(i)
		if e.From < 0 || e.From >= g.NodeCount() || e.To < 0 || e.To >= g.NodeCount() {
			return eris.Errorf("graph: edge %d references missing node (%d -> %d, %d nodes)", e.ID, e.From, e.To, g.NodeCount())
		}
		if e.LengthMeters < 0 || math.IsNaN(e.LengthMeters) || math.IsInf(e.LengthMeters, 0) {
			return eris.Errorf("graph: edge %d has invalid length %v", e.ID, e.LengthMeters)
		}
		if e.TravelTimeSeconds < 0 || math.IsNaN(e.TravelTimeSeconds) || math.IsInf(e.TravelTimeSeconds, 0) {
			return eris.Errorf("graph: edge %d has invalid travel time %v", e.ID, e.TravelTimeSeconds)
		}
		if len(e.Geometry) < 2 {
			return eris.Errorf("graph: edge %d has degenerate geometry", e.ID)
		}
	}
	return nil
}
