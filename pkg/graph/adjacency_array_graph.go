package graph

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// AdjacencyArrayGraph is the immutable query-time form of the road graph:
// all edges in one flat slice grouped by source node, addressed through an
// offset array. Edge ids are assigned here and equal the edge's index, so
// derived state (exposure cache, risk breakdowns) can key on them directly.
type AdjacencyArrayGraph struct {
	Nodes   []orb.Point
	Edges   []Edge
	Offsets []int
}

// NewAdjacencyArrayFromList freezes a build-time graph. Outgoing edges of a
// node are ordered by (To, WayID) so iteration order, and therefore edge id
// assignment, is deterministic for a given input dataset.
func NewAdjacencyArrayFromList(alg *AdjacencyListGraph) *AdjacencyArrayGraph {
	nodes := make([]orb.Point, 0, alg.NodeCount())
	edges := make([]Edge, 0, alg.EdgeCount())
	offsets := make([]int, alg.NodeCount()+1)

	for i := 0; i < alg.NodeCount(); i++ {
		nodes = append(nodes, alg.GetNode(i))

		outgoing := append([]Edge(nil), alg.GetEdgesFrom(i)...)
		sort.Slice(outgoing, func(a, b int) bool {
			if outgoing[a].To != outgoing[b].To {
				return outgoing[a].To < outgoing[b].To
			}
			return outgoing[a].WayID < outgoing[b].WayID
		})
		edges = append(edges, outgoing...)

		offsets[i+1] = len(edges)
	}

	for i := range edges {
		edges[i].ID = i
	}

	return &AdjacencyArrayGraph{Nodes: nodes, Edges: edges, Offsets: offsets}
}

func (aag *AdjacencyArrayGraph) GetNode(id NodeId) orb.Point {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return aag.Nodes[id]
}

func (aag *AdjacencyArrayGraph) GetNodes() []orb.Point {
	return aag.Nodes
}

func (aag *AdjacencyArrayGraph) GetEdge(id EdgeId) *Edge {
	if id < 0 || id >= aag.EdgeCount() {
		panic(fmt.Sprintf("EdgeId %d is not contained in the graph.", id))
	}
	return &aag.Edges[id]
}

func (aag *AdjacencyArrayGraph) GetEdgesFrom(id NodeId) []Edge {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return aag.Edges[aag.Offsets[id]:aag.Offsets[id+1]]
}

func (aag *AdjacencyArrayGraph) NodeCount() int {
	return len(aag.Nodes)
}

func (aag *AdjacencyArrayGraph) EdgeCount() int {
	return len(aag.Edges)
}
