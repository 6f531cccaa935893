package exposure

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/climatenav/navigator/pkg/geometry"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/spatial"
)

const (
	DefaultSampleStepMeters  = 25.0
	DefaultGaugeBufferMeters = 500.0
)

type Config struct {
	// SampleStepMeters is the arc-length resolution at which edge polylines
	// are sampled against polygon hazards. Sampling is deterministic for a
	// fixed edge and polygon.
	SampleStepMeters float64
	// GaugeBufferMeters is the radius around a river gauge within which an
	// edge counts as exposed to it.
	GaugeBufferMeters float64
}

func (c Config) withDefaults() Config {
	if c.SampleStepMeters <= 0 {
		c.SampleStepMeters = DefaultSampleStepMeters
	}
	if c.GaugeBufferMeters <= 0 {
		c.GaugeBufferMeters = DefaultGaugeBufferMeters
	}
	return c
}

// Exposure relates one edge to one hazard feature it geometrically
// intersects. Measure is the fraction of the edge inside the hazard
// geometry (1 for buffered point hazards); Contribution folds in the
// feature severity and, for gauges, how far the stage exceeds flood
// thresholds. The type weight is applied later by the risk model.
type Exposure struct {
	EdgeID       graph.EdgeId
	Feature      *hazard.Feature
	Measure      float64
	Contribution float64
}

// Engine computes and caches edge-hazard exposures for one immutable
// snapshot. A new snapshot gets a new engine, so the cache never needs
// invalidating: versioning happens by swapping the whole engine. Reads are
// lock-free after precompute and RWMutex-guarded when filling lazily.
type Engine struct {
	cfg   Config
	g     graph.Graph
	index *spatial.Index

	mu    sync.RWMutex
	cache map[graph.EdgeId][]Exposure
}

func NewEngine(g graph.Graph, index *spatial.Index, cfg Config) *Engine {
	return &Engine{
		cfg:   cfg.withDefaults(),
		g:     g,
		index: index,
		cache: make(map[graph.EdgeId][]Exposure),
	}
}

// ExposuresFor returns all geometric exposures of the edge, computing and
// caching them on first use. Validity windows are not applied here; callers
// filter with ActiveAt for their departure time.
func (e *Engine) ExposuresFor(id graph.EdgeId) []Exposure {
	e.mu.RLock()
	cached, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	computed := e.compute(e.g.GetEdge(id))

	e.mu.Lock()
	e.cache[id] = computed
	e.mu.Unlock()
	return computed
}

// ActiveExposuresFor returns the edge's exposures whose feature is active
// at t.
func (e *Engine) ActiveExposuresFor(id graph.EdgeId, t time.Time) []Exposure {
	var active []Exposure
	for _, exp := range e.ExposuresFor(id) {
		if exp.Feature.ActiveAt(t) {
			active = append(active, exp)
		}
	}
	return active
}

// PrecomputeAll computes exposures for the whole graph with the given
// number of workers, suitable for a refresh-time batch run.
func (e *Engine) PrecomputeAll(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	results := make([][]Exposure, e.g.EdgeCount())
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := 0; i < e.g.EdgeCount(); i++ {
		i := i
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.compute(e.g.GetEdge(i))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	exposed := 0
	e.mu.Lock()
	for i, exps := range results {
		e.cache[i] = exps
		if len(exps) > 0 {
			exposed++
		}
	}
	e.mu.Unlock()

	zap.L().Info("precomputed edge exposures",
		zap.Int("edges", e.g.EdgeCount()),
		zap.Int("exposed_edges", exposed),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (e *Engine) compute(edge *graph.Edge) []Exposure {
	candidates := e.index.HazardCandidates(edge.Geometry.Bound())
	if len(candidates) == 0 {
		return nil
	}

	samples := geometry.SampleAlong(edge.Geometry, e.cfg.SampleStepMeters)

	var exposures []Exposure
	for _, feature := range candidates {
		var exp *Exposure
		switch feature.Kind {
		case hazard.KindRiverGaugeForecast:
			exp = e.gaugeExposure(edge, feature, samples)
		default:
			exp = e.polygonExposure(edge, feature, samples)
		}
		if exp != nil {
			exposures = append(exposures, *exp)
		}
	}
	return exposures
}

// polygonExposure measures the fraction of the edge's sampled points that
// fall inside the hazard polygon.
func (e *Engine) polygonExposure(edge *graph.Edge, f *hazard.Feature, samples []orb.Point) *Exposure {
	inside := 0
	for _, p := range samples {
		if geometry.Contains(f.Geometry, p) {
			inside++
		}
	}
	if inside == 0 {
		return nil
	}
	measure := float64(inside) / float64(len(samples))
	return &Exposure{
		EdgeID:       edge.ID,
		Feature:      f,
		Measure:      measure,
		Contribution: f.Severity.Weight() * measure,
	}
}

// gaugeExposure is boolean: the edge is exposed when any sampled point lies
// within the configured buffer of the gauge. The magnitude scales with how
// far the forecast stage exceeds the gauge's flood thresholds.
func (e *Engine) gaugeExposure(edge *graph.Edge, f *hazard.Feature, samples []orb.Point) *Exposure {
	gaugeLoc, ok := f.Geometry.(orb.Point)
	if !ok || f.Gauge == nil {
		return nil
	}
	magnitude := f.Gauge.Magnitude()
	if magnitude == 0 {
		return nil
	}
	for _, p := range samples {
		if geometry.Distance(p, gaugeLoc) <= e.cfg.GaugeBufferMeters {
			return &Exposure{
				EdgeID:       edge.ID,
				Feature:      f,
				Measure:      1,
				Contribution: f.Severity.Weight() * magnitude,
			}
		}
	}
	return nil
}
