package routing

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/exposure"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/spatial"
)

// ErrStaleSnapshot is returned when a query arrives before any snapshot
// has been loaded (or, if swap semantics were ever violated, against a
// retired one).
var ErrStaleSnapshot = eris.New("routing: no active snapshot")

const DefaultNearestNodeRadiusMeters = 2000.0

type Config struct {
	// NearestNodeRadiusMeters bounds how far a query coordinate may be from
	// the road network before resolution fails with NotFound.
	NearestNodeRadiusMeters float64
	Exposure                exposure.Config
	Risk                    risk.Config
	// UseHeuristic switches the search from plain Dijkstra to A*.
	UseHeuristic bool
	// PrecomputeWorkers > 0 batch-computes all edge exposures at snapshot
	// load with that many workers; 0 leaves the cache to fill lazily.
	PrecomputeWorkers int
	// RouteTTL is how long a delivered candidate stays valid for callers
	// that persist it.
	RouteTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.NearestNodeRadiusMeters <= 0 {
		c.NearestNodeRadiusMeters = DefaultNearestNodeRadiusMeters
	}
	if c.RouteTTL <= 0 {
		c.RouteTTL = time.Hour
	}
	return c
}

// Engine is the process-wide routing facade: it owns the active snapshot
// pointer and serves concurrent route and comparison queries against it.
type Engine struct {
	cfg    Config
	active atomic.Pointer[Snapshot]
	loads  atomic.Int64
	now    func() time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), now: time.Now}
}

// SetClock replaces the wall clock, used by tests and by callers that need
// reproducible timestamps.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// GraphSource yields a validated-ready road graph, typically from a graph
// file or an OSM import.
type GraphSource interface {
	RoadGraph(ctx context.Context) (*graph.AdjacencyArrayGraph, error)
}

// HazardSource yields the hazard features for a snapshot. Any network
// fetches (live gauge data, alert feeds) happen inside implementations,
// never during a search.
type HazardSource interface {
	HazardFeatures(ctx context.Context) ([]hazard.Feature, error)
}

// LoadSnapshotFrom pulls graph and hazards from their sources and installs
// a new snapshot.
func (e *Engine) LoadSnapshotFrom(ctx context.Context, gs GraphSource, hs HazardSource) (*Snapshot, error) {
	g, err := gs.RoadGraph(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "routing: load road graph")
	}
	features, err := hs.HazardFeatures(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "routing: load hazard features")
	}
	return e.LoadSnapshot(ctx, g, features)
}

// LoadSnapshot validates the graph, builds all derived structures and
// atomically swaps the result in as the active snapshot. Structural
// integrity failures surface here, never at query time.
func (e *Engine) LoadSnapshot(ctx context.Context, g *graph.AdjacencyArrayGraph, features []hazard.Feature) (*Snapshot, error) {
	if err := graph.Validate(g); err != nil {
		return nil, eris.Wrap(err, "routing: snapshot rejected")
	}

	snap := &Snapshot{
		Version:   e.loads.Add(1),
		Graph:     g,
		Features:  features,
		CreatedAt: e.now(),
	}
	gaugeBuffer := e.cfg.Exposure.GaugeBufferMeters
	if gaugeBuffer <= 0 {
		gaugeBuffer = exposure.DefaultGaugeBufferMeters
	}
	snap.Index = spatial.NewIndex(g, features, gaugeBuffer)
	snap.Exposures = exposure.NewEngine(g, snap.Index, e.cfg.Exposure)
	snap.Model = risk.NewModel(g, snap.Exposures, e.cfg.Risk)
	snap.Search = route.NewSearch(g, snap.Model, e.cfg.UseHeuristic)

	if e.cfg.PrecomputeWorkers > 0 {
		if err := snap.Exposures.PrecomputeAll(ctx, e.cfg.PrecomputeWorkers); err != nil {
			return nil, eris.Wrap(err, "routing: precompute exposures")
		}
	}

	e.active.Store(snap)
	zap.L().Info("snapshot loaded",
		zap.Int64("version", snap.Version),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("hazards", len(features)))
	return snap, nil
}

// CurrentSnapshotVersion returns the version of the active snapshot, 0
// when none is loaded.
func (e *Engine) CurrentSnapshotVersion() int64 {
	if snap := e.active.Load(); snap != nil {
		return snap.Version
	}
	return 0
}

func (e *Engine) snapshot() (*Snapshot, error) {
	snap := e.active.Load()
	if snap == nil {
		return nil, ErrStaleSnapshot
	}
	return snap, nil
}

// ResolveRoute computes one route between two coordinates. For non-fastest
// profiles it also runs a fastest-profile search against the same snapshot
// so the candidate can report the hazards it avoided.
func (e *Engine) ResolveRoute(ctx context.Context, origin, destination orb.Point, profileName string, avoidTypes []string, departTime *time.Time) (*route.Candidate, error) {
	profile, err := risk.ParseProfile(profileName)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	req, err := e.resolveRequest(snap, origin, destination, profile, avoidTypes, departTime)
	if err != nil {
		return nil, err
	}

	candidate, err := snap.Search.FindRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	if profile != risk.ProfileFastest {
		fastestReq := req
		fastestReq.Profile = risk.ProfileFastest
		fastest, err := snap.Search.FindRoute(ctx, fastestReq)
		if err != nil {
			return nil, eris.Wrap(err, "routing: fastest reference search")
		}
		candidate.Avoided = route.AvoidedHazards(fastest, candidate)
	}

	e.finalize(candidate, snap)
	return candidate, nil
}

func (e *Engine) resolveRequest(snap *Snapshot, origin, destination orb.Point, profile risk.Profile, avoidTypes []string, departTime *time.Time) (route.Request, error) {
	originNode, err := snap.Index.NearestNode(origin, e.cfg.NearestNodeRadiusMeters)
	if err != nil {
		return route.Request{}, eris.Wrap(err, "origin")
	}
	destinationNode, err := snap.Index.NearestNode(destination, e.cfg.NearestNodeRadiusMeters)
	if err != nil {
		return route.Request{}, eris.Wrap(err, "destination")
	}

	at := e.now()
	if departTime != nil {
		at = *departTime
	}

	avoid := make([]hazard.Type, 0, len(avoidTypes))
	for _, t := range avoidTypes {
		avoid = append(avoid, hazard.Type(t))
	}

	return route.Request{
		Origin:      originNode,
		Destination: destinationNode,
		Profile:     profile,
		Avoid:       avoid,
		DepartTime:  at,
	}, nil
}

func (e *Engine) finalize(c *route.Candidate, snap *Snapshot) {
	now := e.now()
	c.ID = uuid.New()
	c.SnapshotVersion = snap.Version
	c.CalculatedAt = now
	c.ValidUntil = now.Add(e.cfg.RouteTTL)
}
