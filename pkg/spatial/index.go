package spatial

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/rotisserie/eris"

	"github.com/climatenav/navigator/pkg/geometry"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
)

// ErrNotFound is returned by NearestNode when no graph node lies within the
// search radius of the query point.
var ErrNotFound = eris.New("spatial: no graph node within search radius")

// gridTargetPerCell tunes grid resolution: cells are sized so that an evenly
// distributed dataset puts roughly this many items in each cell.
const gridTargetPerCell = 8

// Index answers the proximity and intersection queries routing needs:
// nearest graph node to a coordinate, edges whose bounding box overlaps a
// region, and hazard features active over a region at a point in time.
// It is built from an immutable snapshot and is safe for concurrent reads.
type Index struct {
	g        graph.Graph
	features []hazard.Feature

	nodes        *quadtree.Quadtree
	edges        *cellGrid
	hazards      *cellGrid
	hazardBounds []orb.Bound
}

type nodePointer struct {
	id graph.NodeId
	pt orb.Point
}

func (n nodePointer) Point() orb.Point { return n.pt }

// NewIndex builds the spatial index over a frozen graph and hazard set.
// Point hazards (river gauges) are indexed with their buffer radius so a
// bbox query near a gauge finds it.
func NewIndex(g graph.Graph, features []hazard.Feature, gaugeBufferMeters float64) *Index {
	ix := &Index{g: g, features: features}

	bound := padBound(nodesBound(g))
	ix.nodes = quadtree.New(bound)
	for i := 0; i < g.NodeCount(); i++ {
		// Add only fails for points outside the bound, which padBound rules out.
		_ = ix.nodes.Add(nodePointer{id: i, pt: g.GetNode(i)})
	}

	gridDim := int(math.Ceil(math.Sqrt(float64(g.EdgeCount()+1) / gridTargetPerCell)))
	ix.edges = newCellGrid(bound, gridDim, gridDim)
	for i := 0; i < g.EdgeCount(); i++ {
		ix.edges.insert(g.GetEdge(i).Geometry.Bound(), i)
	}

	hazardDim := int(math.Ceil(math.Sqrt(float64(len(features)+1) / gridTargetPerCell)))
	ix.hazards = newCellGrid(bound, hazardDim, hazardDim)
	ix.hazardBounds = make([]orb.Bound, len(features))
	for i := range features {
		ix.hazardBounds[i] = features[i].Bound(gaugeBufferMeters)
		ix.hazards.insert(ix.hazardBounds[i], i)
	}

	return ix
}

// NearestNode returns the graph node closest to p, or ErrNotFound when the
// closest node is farther than maxRadiusMeters away.
func (ix *Index) NearestNode(p orb.Point, maxRadiusMeters float64) (graph.NodeId, error) {
	found := ix.nodes.Find(p)
	if found == nil {
		return -1, eris.Wrap(ErrNotFound, "empty graph")
	}
	nearest := found.(nodePointer)
	if geometry.Distance(p, nearest.pt) > maxRadiusMeters {
		return -1, eris.Wrapf(ErrNotFound, "nearest node %d beyond %gm", nearest.id, maxRadiusMeters)
	}
	return nearest.id, nil
}

// EdgesIntersecting returns the ids of all edges whose bounding box
// overlaps b. An empty result is valid, not an error.
func (ix *Index) EdgesIntersecting(b orb.Bound) []graph.EdgeId {
	var out []graph.EdgeId
	for _, id := range ix.edges.query(b) {
		if ix.g.GetEdge(id).Geometry.Bound().Intersects(b) {
			out = append(out, id)
		}
	}
	return out
}

// HazardCandidates returns the features whose (buffered) bounding box
// overlaps b, regardless of validity window. The exposure engine uses this
// to precompute geometric intersections once and filter by time per query.
func (ix *Index) HazardCandidates(b orb.Bound) []*hazard.Feature {
	var out []*hazard.Feature
	for _, id := range ix.hazards.query(b) {
		if ix.hazardBounds[id].Intersects(b) {
			out = append(out, &ix.features[id])
		}
	}
	return out
}

// HazardsActiveAt returns the features overlapping b whose validity window
// covers t.
func (ix *Index) HazardsActiveAt(b orb.Bound, t time.Time) []*hazard.Feature {
	var out []*hazard.Feature
	for _, f := range ix.HazardCandidates(b) {
		if f.ActiveAt(t) {
			out = append(out, f)
		}
	}
	return out
}

func nodesBound(g graph.Graph) orb.Bound {
	if g.NodeCount() == 0 {
		return orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	}
	b := orb.Bound{Min: g.GetNode(0), Max: g.GetNode(0)}
	for i := 1; i < g.NodeCount(); i++ {
		b = b.Extend(g.GetNode(i))
	}
	return b
}

// padBound grows the bound slightly so boundary nodes and hazards just
// outside the road network still land inside the index.
func padBound(b orb.Bound) orb.Bound {
	const pad = 0.1 // degrees
	return orb.Bound{
		Min: orb.Point{b.Min[0] - pad, b.Min[1] - pad},
		Max: orb.Point{b.Max[0] + pad, b.Max[1] + pad},
	}
}
