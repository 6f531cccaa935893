package risk

import (
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/exposure"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
)

// ErrInvalidProfile is returned when a route-type string is not one of
// fastest, safest or balanced.
var ErrInvalidProfile = eris.New("risk: unrecognized route profile")

type Profile int

const (
	ProfileFastest Profile = iota
	ProfileBalanced
	ProfileSafest
)

func (p Profile) String() string {
	return []string{"fastest", "balanced", "safest"}[p]
}

func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(s) {
	case "fastest":
		return ProfileFastest, nil
	case "balanced":
		return ProfileBalanced, nil
	case "safest":
		return ProfileSafest, nil
	default:
		return 0, eris.Wrapf(ErrInvalidProfile, "%q", s)
	}
}

// Profiles lists all profiles in comparison order.
func Profiles() []Profile {
	return []Profile{ProfileFastest, ProfileBalanced, ProfileSafest}
}

// Weights are the per-hazard-type multipliers applied to exposure
// contributions. Defaults follow the service configuration the hazard
// feeds were tuned against.
type Weights struct {
	Floodplain       float64 `mapstructure:"floodplain"`
	RiverForecast    float64 `mapstructure:"river_forecast"`
	RainIntensity    float64 `mapstructure:"rain_intensity"`
	AlertSeverity    float64 `mapstructure:"alert_severity"`
	HistoricIncident float64 `mapstructure:"historic_incident"`
}

func DefaultWeights() Weights {
	return Weights{
		Floodplain:       1.0,
		RiverForecast:    0.8,
		RainIntensity:    0.6,
		AlertSeverity:    0.9,
		HistoricIncident: 0.4,
	}
}

// For returns the configured weight for a hazard type. Unrecognized types
// weigh zero; that is a reporting concern, not an error.
func (w Weights) For(t hazard.Type) float64 {
	switch t {
	case hazard.TypeFlood:
		return w.Floodplain
	case hazard.TypeRiverGauge:
		return w.RiverForecast
	case hazard.TypeRainIntensity:
		return w.RainIntensity
	case hazard.TypeWeatherAlert:
		return w.AlertSeverity
	case hazard.TypeHistoricIncident:
		return w.HistoricIncident
	default:
		return 0
	}
}

type Config struct {
	Weights Weights
	// SafestFactor is the K applied to the risk term under the safest
	// profile; balanced uses K=1, fastest K=0.
	SafestFactor float64
}

const DefaultSafestFactor = 50.0

// Model combines an edge's base travel cost with its hazard exposures into
// the scalar weight the search relaxes on. It is immutable and safe for
// concurrent use.
type Model struct {
	cfg       Config
	g         graph.Graph
	exposures *exposure.Engine

	unknownTypes sync.Map // hazard.Type -> struct{}, for one-shot logging
}

func NewModel(g graph.Graph, exposures *exposure.Engine, cfg Config) *Model {
	if cfg.SafestFactor <= 0 {
		cfg.SafestFactor = DefaultSafestFactor
	}
	return &Model{cfg: cfg, g: g, exposures: exposures}
}

// EdgeRisk returns the type-weighted risk score of an edge at time t, its
// per-type breakdown, and the active features producing it.
func (m *Model) EdgeRisk(id graph.EdgeId, t time.Time) (float64, map[hazard.Type]float64, []*hazard.Feature) {
	var total float64
	var byType map[hazard.Type]float64
	var features []*hazard.Feature

	for _, exp := range m.exposures.ActiveExposuresFor(id, t) {
		typ := exp.Feature.Type
		if !hazard.KnownType(typ) {
			m.logUnknownType(typ)
		}
		// the feature is reported even when its type weighs zero; it still
		// geometrically intersects the edge
		features = append(features, exp.Feature)

		contribution := exp.Contribution * m.cfg.Weights.For(typ)
		if contribution == 0 {
			continue
		}
		if byType == nil {
			byType = make(map[hazard.Type]float64)
		}
		total += contribution
		byType[typ] += contribution
	}
	return total, byType, features
}

// EdgeCost returns the search weight of an edge for a profile at departure
// time t. The base cost is free-flow travel time in seconds; the risk term
// is the weighted risk score scaled by that same travel time, so a fully
// flooded edge under the safest profile costs SafestFactor times its
// duration extra per unit risk. Fastest ignores risk for selection (it is
// still computed for reporting).
func (m *Model) EdgeCost(id graph.EdgeId, profile Profile, t time.Time) float64 {
	base := m.g.GetEdge(id).TravelTimeSeconds
	if profile == ProfileFastest {
		return base
	}

	riskScore, _, _ := m.EdgeRisk(id, t)
	if riskScore == 0 {
		return base
	}

	riskTerm := riskScore * base
	if profile == ProfileSafest {
		return base + m.cfg.SafestFactor*riskTerm
	}
	return base + riskTerm
}

// HardExcluded reports whether the edge must be removed from the search
// graph for the given avoid list: any active exposure of an avoided hazard
// type excludes the edge, it is never merely penalized.
func (m *Model) HardExcluded(id graph.EdgeId, avoid []hazard.Type, t time.Time) bool {
	if len(avoid) == 0 {
		return false
	}
	for _, exp := range m.exposures.ActiveExposuresFor(id, t) {
		for _, avoided := range avoid {
			if exp.Feature.Type == avoided {
				return true
			}
		}
	}
	return false
}

func (m *Model) logUnknownType(t hazard.Type) {
	if _, loaded := m.unknownTypes.LoadOrStore(t, struct{}{}); !loaded {
		zap.L().Debug("hazard type has no configured weight, scoring it zero", zap.String("type", string(t)))
	}
}
