package route

import (
	"github.com/climatenav/navigator/pkg/graph"
)

// searchItem is one frontier entry of the search. Implements
// queue.Priorizable; ties on priority resolve by hop count, then node id,
// which together with the relaxation rule makes results reproducible.
type searchItem struct {
	nodeId      graph.NodeId
	cost        float64 // settled cost from origin
	heuristic   float64 // admissible remaining-cost estimate (A* only)
	hops        int     // edges from origin along the current best path
	predecessor graph.NodeId
	predEdge    graph.EdgeId
	index       int
}

func newSearchItem(nodeId graph.NodeId, cost, heuristic float64, predecessor graph.NodeId, predEdge graph.EdgeId, hops int) *searchItem {
	return &searchItem{
		nodeId:      nodeId,
		cost:        cost,
		heuristic:   heuristic,
		hops:        hops,
		predecessor: predecessor,
		predEdge:    predEdge,
		index:       -1,
	}
}

func (it *searchItem) Priority() float64    { return it.cost + it.heuristic }
func (it *searchItem) HopCount() int        { return it.hops }
func (it *searchItem) ItemId() int          { return it.nodeId }
func (it *searchItem) Index() int           { return it.index }
func (it *searchItem) SetIndex(index int)   { it.index = index }
