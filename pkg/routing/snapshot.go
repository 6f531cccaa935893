package routing

import (
	"time"

	"github.com/climatenav/navigator/pkg/exposure"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/spatial"
)

// Snapshot is one immutable, versioned pairing of road graph and hazard
// feature set together with everything derived from them: spatial index,
// exposure engine, risk model and search engine. A refresh builds a whole
// new Snapshot and swaps it in atomically; in-flight searches keep using
// the snapshot they started with.
type Snapshot struct {
	Version   int64
	Graph     *graph.AdjacencyArrayGraph
	Features  []hazard.Feature
	Index     *spatial.Index
	Exposures *exposure.Engine
	Model     *risk.Model
	Search    *route.Search
	CreatedAt time.Time
}
