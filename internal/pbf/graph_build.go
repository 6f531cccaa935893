package pbf

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/road"
)

// BuildGraph turns imported road segments into a frozen routing graph.
// Ways are split at points shared with other ways, so graph nodes are
// exactly the junctions and way endpoints. Two-way segments produce an
// edge in each direction.
func BuildGraph(segments []*road.Segment) (*graph.AdjacencyArrayGraph, error) {
	usage := make(map[orb.Point]int)
	for _, segment := range segments {
		for _, p := range segment.Points {
			usage[p]++
		}
	}

	alg := graph.NewAdjacencyListGraph()
	nodeIds := make(map[orb.Point]graph.NodeId)
	nodeFor := func(p orb.Point) graph.NodeId {
		if id, ok := nodeIds[p]; ok {
			return id
		}
		id := alg.AddNode(p)
		nodeIds[p] = id
		return id
	}

	for _, segment := range segments {
		chunk := orb.LineString{segment.Points[0]}
		for i := 1; i < len(segment.Points); i++ {
			p := segment.Points[i]
			chunk = append(chunk, p)
			last := i == len(segment.Points)-1
			if !last && usage[p] < 2 {
				continue
			}

			from := nodeFor(chunk[0])
			to := nodeFor(p)
			spec := graph.EdgeSpec{
				Geometry: chunk,
				SpeedKmh: segment.SpeedKmh(),
				Class:    segment.Class,
				Surface:  segment.Surface,
				Name:     segment.Name,
				WayID:    segment.ID,
			}
			if err := alg.AddEdge(from, to, spec); err != nil {
				return nil, eris.Wrapf(err, "pbf: way %d", segment.ID)
			}
			if !segment.OneWay {
				back := spec
				back.Geometry = reversed(chunk)
				if err := alg.AddEdge(to, from, back); err != nil {
					return nil, eris.Wrapf(err, "pbf: way %d", segment.ID)
				}
			}
			chunk = orb.LineString{p}
		}
	}

	aag := graph.NewAdjacencyArrayFromList(alg)
	zap.L().Info("road graph built",
		zap.Int("segments", len(segments)),
		zap.Int("nodes", aag.NodeCount()),
		zap.Int("edges", aag.EdgeCount()))
	return aag, nil
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}
