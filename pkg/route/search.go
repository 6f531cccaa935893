package route

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/climatenav/navigator/pkg/geometry"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/queue"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/slice"
)

// ErrNoRouteFound is returned when the destination is unreachable from the
// origin, either because the graph is disconnected or because avoid
// constraints excluded every path.
var ErrNoRouteFound = eris.New("route: no route found")

// cancelCheckInterval is how many settled nodes pass between context
// checks; the inner loop stays free of per-iteration overhead.
const cancelCheckInterval = 256

// Request describes one shortest-path search.
type Request struct {
	Origin      graph.NodeId
	Destination graph.NodeId
	Profile     risk.Profile
	Avoid       []hazard.Type
	DepartTime  time.Time
}

// Search runs risk-weighted shortest-path queries over one immutable graph
// snapshot. It holds no per-request state and is safe for concurrent use.
type Search struct {
	g            graph.Graph
	model        *risk.Model
	useHeuristic bool
	maxSpeedMps  float64
}

// NewSearch builds a search engine. When useHeuristic is set the search
// runs as A* with a great-circle lower bound on remaining travel time,
// scaled by the fastest speed present anywhere in the graph so the
// heuristic never overestimates.
func NewSearch(g graph.Graph, model *risk.Model, useHeuristic bool) *Search {
	s := &Search{g: g, model: model, useHeuristic: useHeuristic}
	if useHeuristic {
		for i := 0; i < g.EdgeCount(); i++ {
			e := g.GetEdge(i)
			if e.TravelTimeSeconds > 0 {
				if v := e.LengthMeters / e.TravelTimeSeconds; v > s.maxSpeedMps {
					s.maxSpeedMps = v
				}
			}
		}
	}
	return s
}

// FindRoute computes the cheapest path for the request and materializes it
// as a Candidate. Per-segment distance, duration and risk are recomputed
// from the original edge records, so fastest-profile output reports the
// risk it ignored during selection.
func (s *Search) FindRoute(ctx context.Context, req Request) (*Candidate, error) {
	edges, err := s.shortestPath(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.buildCandidate(req, edges), nil
}

// shortestPath runs Dijkstra (or A*) relaxation until the destination is
// settled and returns the edge sequence of the path. Among equal-cost paths
// it prefers fewer edges, then the lexicographically smaller node-id
// sequence; relaxation and heap ordering enforce this together.
func (s *Search) shortestPath(ctx context.Context, req Request) ([]graph.EdgeId, error) {
	items := make([]*searchItem, s.g.NodeCount())
	settled := make([]bool, s.g.NodeCount())

	origin := newSearchItem(req.Origin, 0, s.estimate(req.Origin, req.Destination), -1, -1, 0)
	items[req.Origin] = origin

	pq := queue.NewMinHeap[*searchItem]()
	pq.Push(origin)

	pops := 0
	for pq.Len() > 0 {
		current := pq.Pop()
		settled[current.nodeId] = true

		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "route: search abandoned")
			}
		}

		if current.nodeId == req.Destination {
			break
		}

		outgoing := s.g.GetEdgesFrom(current.nodeId)
		for i := range outgoing {
			edge := &outgoing[i]
			if settled[edge.To] {
				continue
			}
			if s.model.HardExcluded(edge.ID, req.Avoid, req.DepartTime) {
				continue
			}

			cost := current.cost + s.model.EdgeCost(edge.ID, req.Profile, req.DepartTime)
			hops := current.hops + 1

			successor := items[edge.To]
			if successor == nil {
				successor = newSearchItem(edge.To, cost, s.estimate(edge.To, req.Destination), current.nodeId, edge.ID, hops)
				items[edge.To] = successor
				pq.Push(successor)
			} else if betterPath(successor, cost, hops, current.nodeId) {
				successor.cost = cost
				successor.hops = hops
				successor.predecessor = current.nodeId
				successor.predEdge = edge.ID
				pq.Update(successor)
			}
		}
	}

	destination := items[req.Destination]
	if destination == nil || !settled[req.Destination] {
		return nil, eris.Wrapf(ErrNoRouteFound, "%d -> %d (%s)", req.Origin, req.Destination, req.Profile)
	}

	path := make([]graph.EdgeId, 0, destination.hops)
	for item := destination; item.predEdge != -1; item = items[item.predecessor] {
		path = append(path, item.predEdge)
	}
	slice.ReverseInPlace(path)
	return path, nil
}

// betterPath decides whether a relaxation improves on the stored item:
// strictly cheaper, or equal cost with fewer hops, or equal on both with a
// smaller predecessor node id.
func betterPath(item *searchItem, cost float64, hops int, predecessor graph.NodeId) bool {
	if cost != item.cost {
		return cost < item.cost
	}
	if hops != item.hops {
		return hops < item.hops
	}
	return predecessor < item.predecessor
}

func (s *Search) estimate(from, to graph.NodeId) float64 {
	if !s.useHeuristic || s.maxSpeedMps <= 0 {
		return 0
	}
	return geometry.Distance(s.g.GetNode(from), s.g.GetNode(to)) / s.maxSpeedMps
}
