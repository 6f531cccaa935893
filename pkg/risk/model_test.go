package risk

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatenav/navigator/pkg/exposure"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/road"
	"github.com/climatenav/navigator/pkg/spatial"
)

func TestParseProfile(t *testing.T) {
	for _, p := range Profiles() {
		parsed, err := ParseProfile(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	parsed, err := ParseProfile("Fastest")
	require.NoError(t, err)
	assert.Equal(t, ProfileFastest, parsed)

	_, err = ParseProfile("scenic")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidProfile))
}

func TestWeightsFor(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, 1.0, w.For(hazard.TypeFlood))
	assert.Equal(t, 0.8, w.For(hazard.TypeRiverGauge))
	assert.Equal(t, 0.6, w.For(hazard.TypeRainIntensity))
	assert.Equal(t, 0.9, w.For(hazard.TypeWeatherAlert))
	assert.Equal(t, 0.4, w.For(hazard.TypeHistoricIncident))
	assert.Zero(t, w.For(hazard.Type("volcano")))
}

// singleEdgeModel builds a one edge graph with the given features over it.
func singleEdgeModel(t *testing.T, features []hazard.Feature) (*Model, *graph.AdjacencyArrayGraph) {
	t.Helper()
	alg := graph.NewAdjacencyListGraph()
	alg.AddNode(orb.Point{0, 0})
	alg.AddNode(orb.Point{0.01, 0})
	err := alg.AddEdge(0, 1, graph.EdgeSpec{
		Geometry: orb.LineString{{0, 0}, {0.01, 0}},
		SpeedKmh: 50,
		Class:    road.Residential,
		WayID:    1,
	})
	require.NoError(t, err)
	g := graph.NewAdjacencyArrayFromList(alg)

	ix := spatial.NewIndex(g, features, exposure.DefaultGaugeBufferMeters)
	exp := exposure.NewEngine(g, ix, exposure.Config{})
	return NewModel(g, exp, Config{Weights: DefaultWeights()}), g
}

func coveringZone(id string, typ hazard.Type, sev hazard.Severity) hazard.Feature {
	return hazard.Feature{
		ID:       id,
		Kind:     hazard.KindFloodZone,
		Type:     typ,
		Severity: sev,
		Geometry: orb.Polygon{{
			{-0.001, -0.001}, {0.011, -0.001}, {0.011, 0.001}, {-0.001, 0.001}, {-0.001, -0.001},
		}},
	}
}

func TestEdgeRisk(t *testing.T) {
	m, _ := singleEdgeModel(t, []hazard.Feature{
		coveringZone("flood-1", hazard.TypeFlood, hazard.SeverityExtreme),
	})
	now := time.Now()

	total, byType, features := m.EdgeRisk(0, now)
	// full cover, extreme severity, flood weight 1.0
	assert.Equal(t, 1.0, total)
	assert.Equal(t, map[hazard.Type]float64{hazard.TypeFlood: 1.0}, byType)
	require.Len(t, features, 1)
	assert.Equal(t, "flood-1", features[0].ID)
}

func TestEdgeRiskUnknownTypeWeighsZero(t *testing.T) {
	m, _ := singleEdgeModel(t, []hazard.Feature{
		coveringZone("odd-1", hazard.Type("volcano"), hazard.SeverityExtreme),
	})

	total, byType, features := m.EdgeRisk(0, time.Now())
	assert.Zero(t, total)
	assert.Nil(t, byType)
	// the feature is still reported, it intersects the edge
	require.Len(t, features, 1)
	assert.Equal(t, "odd-1", features[0].ID)
}

func TestEdgeCostPerProfile(t *testing.T) {
	m, g := singleEdgeModel(t, []hazard.Feature{
		coveringZone("flood-1", hazard.TypeFlood, hazard.SeverityExtreme),
	})
	now := time.Now()
	base := g.GetEdge(0).TravelTimeSeconds

	assert.Equal(t, base, m.EdgeCost(0, ProfileFastest, now))
	// risk score 1.0: balanced doubles, safest adds the factor
	assert.InDelta(t, 2*base, m.EdgeCost(0, ProfileBalanced, now), 1e-9)
	assert.InDelta(t, base+DefaultSafestFactor*base, m.EdgeCost(0, ProfileSafest, now), 1e-9)
}

func TestEdgeCostRiskFree(t *testing.T) {
	m, g := singleEdgeModel(t, nil)
	now := time.Now()
	base := g.GetEdge(0).TravelTimeSeconds

	for _, p := range Profiles() {
		assert.Equal(t, base, m.EdgeCost(0, p, now))
	}
}

func TestHardExcluded(t *testing.T) {
	m, _ := singleEdgeModel(t, []hazard.Feature{
		coveringZone("flood-1", hazard.TypeFlood, hazard.SeverityMinor),
	})
	now := time.Now()

	assert.True(t, m.HardExcluded(0, []hazard.Type{hazard.TypeFlood}, now))
	assert.False(t, m.HardExcluded(0, []hazard.Type{hazard.TypeWeatherAlert}, now))
	assert.False(t, m.HardExcluded(0, nil, now))
}

func TestHardExcludedRespectsWindow(t *testing.T) {
	now := time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)

	zone := coveringZone("flood-old", hazard.TypeFlood, hazard.SeverityExtreme)
	zone.EffectiveEnd = &past
	m, _ := singleEdgeModel(t, []hazard.Feature{zone})

	assert.False(t, m.HardExcluded(0, []hazard.Type{hazard.TypeFlood}, now))
	total, _, _ := m.EdgeRisk(0, now)
	assert.Zero(t, total)
}
