package exposure

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/road"
	"github.com/climatenav/navigator/pkg/spatial"
)

// twoEdgeGraph builds 0 -> 1 -> 2 along the equator, 0.01 degrees
// (roughly 1.1km) per edge.
func twoEdgeGraph(t *testing.T) *graph.AdjacencyArrayGraph {
	t.Helper()
	alg := graph.NewAdjacencyListGraph()
	for i := 0; i < 3; i++ {
		alg.AddNode(orb.Point{float64(i) * 0.01, 0})
	}
	for i := 0; i < 2; i++ {
		err := alg.AddEdge(i, i+1, graph.EdgeSpec{
			Geometry: orb.LineString{alg.GetNode(i), alg.GetNode(i + 1)},
			SpeedKmh: 50,
			Class:    road.Residential,
			WayID:    int64(i),
		})
		require.NoError(t, err)
	}
	return graph.NewAdjacencyArrayFromList(alg)
}

func newTestEngine(t *testing.T, features []hazard.Feature) (*Engine, *graph.AdjacencyArrayGraph) {
	t.Helper()
	g := twoEdgeGraph(t)
	ix := spatial.NewIndex(g, features, DefaultGaugeBufferMeters)
	return NewEngine(g, ix, Config{}), g
}

func floodZone(id string, sev hazard.Severity, minLon, maxLon float64) hazard.Feature {
	return hazard.Feature{
		ID:       id,
		Kind:     hazard.KindFloodZone,
		Type:     hazard.TypeFlood,
		Severity: sev,
		Geometry: orb.Polygon{{
			{minLon, -0.001}, {maxLon, -0.001}, {maxLon, 0.001}, {minLon, 0.001}, {minLon, -0.001},
		}},
	}
}

func TestPolygonExposureFullCover(t *testing.T) {
	e, _ := newTestEngine(t, []hazard.Feature{
		floodZone("zone-full", hazard.SeverityExtreme, -0.001, 0.011),
	})

	exps := e.ExposuresFor(0)
	require.Len(t, exps, 1)
	assert.Equal(t, 1.0, exps[0].Measure)
	assert.Equal(t, 1.0, exps[0].Contribution)
	assert.Equal(t, "zone-full", exps[0].Feature.ID)
}

func TestPolygonExposureMiss(t *testing.T) {
	// zone nowhere near either edge
	e, _ := newTestEngine(t, []hazard.Feature{
		floodZone("zone-far", hazard.SeverityExtreme, 0.05, 0.06),
	})

	assert.Empty(t, e.ExposuresFor(0))
	assert.Empty(t, e.ExposuresFor(1))
}

func TestPolygonExposurePartialCover(t *testing.T) {
	// zone covers roughly the second half of edge 0
	e, _ := newTestEngine(t, []hazard.Feature{
		floodZone("zone-half", hazard.SeveritySevere, 0.005, 0.011),
	})

	exps := e.ExposuresFor(0)
	require.Len(t, exps, 1)
	assert.InDelta(t, 0.5, exps[0].Measure, 0.05)
	assert.InDelta(t, 0.75*exps[0].Measure, exps[0].Contribution, 1e-9)
}

func TestPolygonExposureDeterministic(t *testing.T) {
	e, _ := newTestEngine(t, []hazard.Feature{
		floodZone("zone-half", hazard.SeveritySevere, 0.0052, 0.0113),
	})

	first := e.ExposuresFor(0)
	second := e.ExposuresFor(0)
	assert.Equal(t, first, second)
}

func TestGaugeExposure(t *testing.T) {
	flooding := hazard.Feature{
		ID:       "gauge-major",
		Kind:     hazard.KindRiverGaugeForecast,
		Type:     hazard.TypeRiverGauge,
		Severity: hazard.SeverityExtreme,
		Geometry: orb.Point{0, 0.002}, // about 220m north of node 0
		Gauge: &hazard.GaugeForecast{
			GaugeID:           "gauge-major",
			StageFeet:         20,
			MinorStageFeet:    10,
			ModerateStageFeet: 14,
			MajorStageFeet:    18,
		},
	}
	e, _ := newTestEngine(t, []hazard.Feature{flooding})

	exps := e.ExposuresFor(0)
	require.Len(t, exps, 1)
	assert.Equal(t, 1.0, exps[0].Measure)
	assert.Equal(t, 1.0, exps[0].Contribution) // extreme severity, magnitude 1

	// the far edge starts 2.2km away, outside the 500m buffer
	assert.Empty(t, e.ExposuresFor(1))
}

func TestGaugeBelowFloodStage(t *testing.T) {
	calm := hazard.Feature{
		ID:       "gauge-calm",
		Kind:     hazard.KindRiverGaugeForecast,
		Type:     hazard.TypeRiverGauge,
		Severity: hazard.SeverityMinor,
		Geometry: orb.Point{0, 0.002},
		Gauge: &hazard.GaugeForecast{
			GaugeID:           "gauge-calm",
			StageFeet:         5,
			MinorStageFeet:    10,
			ModerateStageFeet: 14,
			MajorStageFeet:    18,
		},
	}
	e, _ := newTestEngine(t, []hazard.Feature{calm})

	// a gauge below its minor flood stage produces no exposure at all
	assert.Empty(t, e.ExposuresFor(0))
}

func TestActiveExposuresFor(t *testing.T) {
	start := time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	zone := floodZone("zone-windowed", hazard.SeverityModerate, -0.001, 0.011)
	zone.EffectiveStart = &start
	zone.EffectiveEnd = &end

	e, _ := newTestEngine(t, []hazard.Feature{zone})

	assert.Len(t, e.ActiveExposuresFor(0, start.Add(time.Hour)), 1)
	assert.Empty(t, e.ActiveExposuresFor(0, end.Add(time.Hour)))
	assert.Empty(t, e.ActiveExposuresFor(0, start.Add(-time.Hour)))
}

func TestPrecomputeAll(t *testing.T) {
	e, g := newTestEngine(t, []hazard.Feature{
		floodZone("zone-full", hazard.SeverityExtreme, -0.001, 0.011),
	})

	require.NoError(t, e.PrecomputeAll(context.Background(), 4))

	e.mu.RLock()
	cachedEdges := len(e.cache)
	e.mu.RUnlock()
	assert.Equal(t, g.EdgeCount(), cachedEdges)

	exps := e.ExposuresFor(0)
	require.Len(t, exps, 1)
	assert.Equal(t, 1.0, exps[0].Measure)
}
