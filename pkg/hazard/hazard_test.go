package hazard

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityMinor, ParseSeverity("Minor"))
	assert.Equal(t, SeverityModerate, ParseSeverity("moderate"))
	assert.Equal(t, SeveritySevere, ParseSeverity("SEVERE"))
	assert.Equal(t, SeverityExtreme, ParseSeverity("Extreme"))
	assert.Equal(t, SeverityUnknown, ParseSeverity("catastrophic"))
	assert.Equal(t, SeverityUnknown, ParseSeverity(""))
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 0.25, SeverityMinor.Weight())
	assert.Equal(t, 0.5, SeverityModerate.Weight())
	assert.Equal(t, 0.75, SeveritySevere.Weight())
	assert.Equal(t, 1.0, SeverityExtreme.Weight())
	// unknown severity weighs like minor, the feature still counts
	assert.Equal(t, 0.25, SeverityUnknown.Weight())
}

func TestActiveAt(t *testing.T) {
	now := time.Date(2026, 4, 12, 15, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	unbounded := Feature{}
	assert.True(t, unbounded.ActiveAt(now))

	windowed := Feature{EffectiveStart: &before, EffectiveEnd: &after}
	assert.True(t, windowed.ActiveAt(now))
	assert.False(t, windowed.ActiveAt(before.Add(-time.Minute)))
	assert.False(t, windowed.ActiveAt(after.Add(time.Minute)))

	expired := Feature{EffectiveEnd: &before}
	assert.False(t, expired.ActiveAt(now))

	future := Feature{EffectiveStart: &after}
	assert.False(t, future.ActiveAt(now))
}

func TestGaugeMagnitude(t *testing.T) {
	g := GaugeForecast{
		MinorStageFeet:    10,
		ModerateStageFeet: 14,
		MajorStageFeet:    18,
	}

	cases := []struct {
		stage float64
		want  float64
	}{
		{5, 0},
		{9.99, 0},
		{10, 1.0 / 3.0},
		{12, 0.5}, // halfway between minor and moderate
		{14, 2.0 / 3.0},
		{16, 5.0 / 6.0}, // halfway between moderate and major
		{18, 1},
		{25, 1},
	}
	for _, tc := range cases {
		g.StageFeet = tc.stage
		assert.InDelta(t, tc.want, g.Magnitude(), 1e-9, "stage %.2f", tc.stage)
	}
}

func TestFeatureBound(t *testing.T) {
	gauge := Feature{Geometry: orb.Point{-97.5, 30.3}}
	b := gauge.Bound(500)
	assert.True(t, b.Contains(orb.Point{-97.5, 30.3}))
	// the buffer extends the bound past the point itself
	assert.True(t, b.Min[1] < 30.3 && b.Max[1] > 30.3)

	poly := Feature{Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}}
	assert.Equal(t, poly.Geometry.Bound(), poly.Bound(500))
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(TypeFlood))
	assert.True(t, KnownType(TypeRiverGauge))
	assert.True(t, KnownType(TypeWeatherAlert))
	assert.True(t, KnownType(TypeRainIntensity))
	assert.True(t, KnownType(TypeHistoricIncident))
	assert.False(t, KnownType(Type("volcano")))
}
