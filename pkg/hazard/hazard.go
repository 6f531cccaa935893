package hazard

import (
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/climatenav/navigator/pkg/geometry"
)

// Type is the risk-weighting category of a hazard. The five known types map
// one-to-one onto the configured weight categories; anything else weighs
// zero during scoring.
type Type string

const (
	TypeFlood            Type = "flood"
	TypeRiverGauge       Type = "river_gauge"
	TypeWeatherAlert     Type = "weather_alert"
	TypeRainIntensity    Type = "rain_intensity"
	TypeHistoricIncident Type = "historic_incident"
)

// KnownType reports whether t is one of the weight categories the risk
// model recognizes.
func KnownType(t Type) bool {
	switch t {
	case TypeFlood, TypeRiverGauge, TypeWeatherAlert, TypeRainIntensity, TypeHistoricIncident:
		return true
	}
	return false
}

// Kind is the closed set of feature variants.
type Kind int

const (
	KindFloodZone Kind = iota
	KindWeatherAlert
	KindRiverGaugeForecast
)

func (k Kind) String() string {
	return []string{"flood_zone", "weather_alert", "river_gauge_forecast"}[k]
}

// Severity is the ordered alert severity scale (NWS CAP ordering).
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
	SeverityExtreme
)

func (s Severity) String() string {
	return []string{"unknown", "minor", "moderate", "severe", "extreme"}[s]
}

// Weight maps the severity onto [0,1] for risk scoring. Unknown is treated
// like minor rather than dropping the feature entirely.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityModerate:
		return 0.5
	case SeveritySevere:
		return 0.75
	case SeverityExtreme:
		return 1.0
	default:
		return 0.25
	}
}

func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "minor":
		return SeverityMinor
	case "moderate":
		return SeverityModerate
	case "severe":
		return SeveritySevere
	case "extreme":
		return SeverityExtreme
	default:
		return SeverityUnknown
	}
}

// Citation records where a hazard feature came from, carried through to
// route output so callers can attribute warnings.
type Citation struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// GaugeForecast holds the stage readings of a river gauge relative to its
// published flood thresholds.
type GaugeForecast struct {
	GaugeID           string
	RiverName         string
	StageFeet         float64
	MinorStageFeet    float64
	ModerateStageFeet float64
	MajorStageFeet    float64
}

// Magnitude maps the forecast stage onto [0,1]: zero below the minor flood
// stage, 1/3 at minor, 2/3 at moderate, 1 at major, clamped above major.
// Interpolation between thresholds is linear.
func (g *GaugeForecast) Magnitude() float64 {
	switch {
	case g.StageFeet < g.MinorStageFeet:
		return 0
	case g.StageFeet >= g.MajorStageFeet:
		return 1
	case g.StageFeet >= g.ModerateStageFeet:
		span := g.MajorStageFeet - g.ModerateStageFeet
		if span <= 0 {
			return 1
		}
		return 2.0/3.0 + (g.StageFeet-g.ModerateStageFeet)/span/3.0
	default:
		span := g.ModerateStageFeet - g.MinorStageFeet
		if span <= 0 {
			return 2.0 / 3.0
		}
		return 1.0/3.0 + (g.StageFeet-g.MinorStageFeet)/span/3.0
	}
}

// Feature is one geospatial hazard record. Kind selects the variant:
// flood zones and weather alerts carry polygonal geometry, river gauge
// forecasts carry a point geometry plus the Gauge block.
type Feature struct {
	ID             string
	Kind           Kind
	Type           Type
	Severity       Severity
	Geometry       orb.Geometry
	EffectiveStart *time.Time
	EffectiveEnd   *time.Time
	Source         Citation
	Headline       string
	Gauge          *GaugeForecast
}

// ActiveAt reports whether the feature's validity window covers t. A
// feature with no declared validity is always active.
func (f *Feature) ActiveAt(t time.Time) bool {
	if f.EffectiveStart != nil && t.Before(*f.EffectiveStart) {
		return false
	}
	if f.EffectiveEnd != nil && t.After(*f.EffectiveEnd) {
		return false
	}
	return true
}

// Bound returns the feature's bounding box. Point features (gauges) are
// buffered by the given radius since they affect edges within it.
func (f *Feature) Bound(bufferMeters float64) orb.Bound {
	if p, ok := f.Geometry.(orb.Point); ok {
		return geometry.BoundAround(p, bufferMeters)
	}
	return f.Geometry.Bound()
}
