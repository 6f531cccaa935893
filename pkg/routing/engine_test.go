package routing

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/road"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/spatial"
)

var (
	originPt      = orb.Point{0, 0}
	destinationPt = orb.Point{0.02, 0}
	testClock     = time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC)
)

// diamondGraph builds two ways from origin to destination: a short arm
// over (0.01, 0.004) and a longer one over (0.01, -0.01).
func diamondGraph(t *testing.T) *graph.AdjacencyArrayGraph {
	t.Helper()
	alg := graph.NewAdjacencyListGraph()
	n0 := alg.AddNode(originPt)
	n1 := alg.AddNode(orb.Point{0.01, 0.004})
	n2 := alg.AddNode(orb.Point{0.01, -0.01})
	n3 := alg.AddNode(destinationPt)

	addEdge := func(from, to graph.NodeId, wayID int64) {
		t.Helper()
		err := alg.AddEdge(from, to, graph.EdgeSpec{
			Geometry: orb.LineString{alg.GetNode(from), alg.GetNode(to)},
			SpeedKmh: 50,
			Class:    road.Residential,
			WayID:    wayID,
		})
		require.NoError(t, err)
	}
	addEdge(n0, n1, 1)
	addEdge(n1, n3, 2)
	addEdge(n0, n2, 3)
	addEdge(n2, n3, 4)
	return graph.NewAdjacencyArrayFromList(alg)
}

func northFlood() hazard.Feature {
	return hazard.Feature{
		ID:       "flood-north",
		Kind:     hazard.KindFloodZone,
		Type:     hazard.TypeFlood,
		Severity: hazard.SeverityExtreme,
		Geometry: orb.Polygon{{
			{0.003, 0.001}, {0.017, 0.001}, {0.017, 0.005}, {0.003, 0.005}, {0.003, 0.001},
		}},
	}
}

func newTestEngine(t *testing.T, features []hazard.Feature) *Engine {
	t.Helper()
	e := NewEngine(Config{
		Risk:              risk.Config{Weights: risk.DefaultWeights()},
		PrecomputeWorkers: 2,
	})
	e.SetClock(func() time.Time { return testClock })
	_, err := e.LoadSnapshot(context.Background(), diamondGraph(t), features)
	require.NoError(t, err)
	return e
}

func TestNoActiveSnapshot(t *testing.T) {
	e := NewEngine(Config{})

	_, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "fastest", nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrStaleSnapshot))

	_, err = e.CompareRoutes(context.Background(), originPt, destinationPt, nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrStaleSnapshot))

	assert.Zero(t, e.CurrentSnapshotVersion())
}

func TestSnapshotVersioning(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.Equal(t, int64(1), e.CurrentSnapshotVersion())

	_, err := e.LoadSnapshot(context.Background(), diamondGraph(t), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.CurrentSnapshotVersion())
}

func TestSnapshotRejectsInvalidGraph(t *testing.T) {
	e := NewEngine(Config{})
	broken := diamondGraph(t)
	broken.Edges[0].To = 99

	_, err := e.LoadSnapshot(context.Background(), broken, nil)
	require.Error(t, err)
	assert.Nil(t, e.active.Load())
}

func TestResolveRoute(t *testing.T) {
	e := newTestEngine(t, []hazard.Feature{northFlood()})

	c, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "fastest", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeId{0, 1, 3}, c.Nodes)
	assert.Equal(t, risk.ProfileFastest, c.Profile)
	assert.Equal(t, int64(1), c.SnapshotVersion)
	assert.NotEqual(t, c.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, testClock, c.CalculatedAt)
	assert.Equal(t, testClock.Add(time.Hour), c.ValidUntil)
	assert.Greater(t, c.RiskScore, 0.0)
}

func TestResolveRouteSafestReportsAvoided(t *testing.T) {
	e := newTestEngine(t, []hazard.Feature{northFlood()})

	c, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "safest", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeId{0, 2, 3}, c.Nodes)
	assert.Zero(t, c.RiskScore)
	assert.Empty(t, c.Encountered)
	require.Len(t, c.Avoided, 1)
	assert.Equal(t, "flood-north", c.Avoided[0].ID)
}

func TestResolveRouteBadProfile(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "scenic", nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, risk.ErrInvalidProfile))
}

func TestResolveRouteOffNetwork(t *testing.T) {
	e := newTestEngine(t, nil)

	farAway := orb.Point{2, 2}
	_, err := e.ResolveRoute(context.Background(), farAway, destinationPt, "fastest", nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, spatial.ErrNotFound))
}

func TestResolveRouteAvoidUnroutable(t *testing.T) {
	everywhere := northFlood()
	everywhere.ID = "flood-everywhere"
	everywhere.Geometry = orb.Polygon{{
		{-0.001, -0.011}, {0.021, -0.011}, {0.021, 0.005}, {-0.001, 0.005}, {-0.001, -0.011},
	}}
	e := newTestEngine(t, []hazard.Feature{everywhere})

	_, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "fastest", []string{"flood"}, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, route.ErrNoRouteFound))
}

func TestDepartTimePinsHazardWindow(t *testing.T) {
	end := testClock.Add(-time.Hour)
	expired := northFlood()
	expired.EffectiveEnd = &end
	e := newTestEngine(t, []hazard.Feature{expired})

	// the flood is over, so even the safest route takes the short arm
	c, err := e.ResolveRoute(context.Background(), originPt, destinationPt, "safest", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{0, 1, 3}, c.Nodes)
	assert.Zero(t, c.RiskScore)

	// departing while the flood was active brings the detour back
	during := testClock.Add(-2 * time.Hour)
	c, err = e.ResolveRoute(context.Background(), originPt, destinationPt, "safest", nil, &during)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{0, 2, 3}, c.Nodes)
}

func TestCompareRoutes(t *testing.T) {
	e := newTestEngine(t, []hazard.Feature{northFlood()})

	r, err := e.CompareRoutes(context.Background(), originPt, destinationPt, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeId{0, 1, 3}, r.Fastest.Nodes)
	assert.Equal(t, []graph.NodeId{0, 2, 3}, r.Balanced.Nodes)
	assert.Equal(t, []graph.NodeId{0, 2, 3}, r.Safest.Nodes)

	assert.Greater(t, r.SafetyTradeOffMinutes, 0.0)
	assert.InDelta(t, (r.Safest.DurationSeconds-r.Fastest.DurationSeconds)/60, r.SafetyTradeOffMinutes, 1e-9)

	// the safest route carries no risk here, shedding all of it
	assert.InDelta(t, 100.0, r.RiskReductionPercent, 1e-9)

	require.Len(t, r.Safest.Avoided, 1)
	assert.Equal(t, "flood-north", r.Safest.Avoided[0].ID)
	assert.Empty(t, r.Fastest.Avoided)

	assert.Equal(t, int64(1), r.SnapshotVersion)
	assert.Equal(t, testClock, r.ComparedAt)
	for _, c := range []*route.Candidate{r.Fastest, r.Balanced, r.Safest} {
		assert.Equal(t, int64(1), c.SnapshotVersion)
	}
}

func TestCompareRoutesRiskFree(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.CompareRoutes(context.Background(), originPt, destinationPt, nil, nil)
	require.NoError(t, err)

	// all three profiles agree on a risk-free network
	assert.Equal(t, r.Fastest.Nodes, r.Balanced.Nodes)
	assert.Equal(t, r.Fastest.Nodes, r.Safest.Nodes)
	assert.Zero(t, r.SafetyTradeOffMinutes)
	assert.Zero(t, r.RiskReductionPercent)
}

func TestRiskReduction(t *testing.T) {
	assert.InDelta(t, 75.0, riskReduction(0.40, 0.10), 1e-9)
	assert.Zero(t, riskReduction(0, 0))
	assert.Zero(t, riskReduction(0, 0.5))
	assert.InDelta(t, 100.0, riskReduction(1.5, 0), 1e-9)
}

func TestLoadSnapshotFromSources(t *testing.T) {
	e := NewEngine(Config{Risk: risk.Config{Weights: risk.DefaultWeights()}})
	e.SetClock(func() time.Time { return testClock })

	g := diamondGraph(t)
	snap, err := e.LoadSnapshotFrom(context.Background(),
		graphSourceFunc(func(context.Context) (*graph.AdjacencyArrayGraph, error) { return g, nil }),
		hazardSourceFunc(func(context.Context) ([]hazard.Feature, error) { return []hazard.Feature{northFlood()}, nil }),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Features, 1)
	assert.Equal(t, testClock, snap.CreatedAt)
}

type graphSourceFunc func(ctx context.Context) (*graph.AdjacencyArrayGraph, error)

func (f graphSourceFunc) RoadGraph(ctx context.Context) (*graph.AdjacencyArrayGraph, error) {
	return f(ctx)
}

type hazardSourceFunc func(ctx context.Context) ([]hazard.Feature, error)

func (f hazardSourceFunc) HazardFeatures(ctx context.Context) ([]hazard.Feature, error) {
	return f(ctx)
}
