package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/climatenav/navigator/internal/feeds"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/routing"
)

var (
	flagGraphFile  = flag.String("graph", "road_graph.txt", "graph file to benchmark against")
	flagZones      = flag.String("zones", "", "optional flood zone shapefile")
	flagAlerts     = flag.String("alerts", "", "optional weather alert feed file")
	flagGauges     = flag.String("gauges", "", "optional river gauge feed file")
	flagQueries    = flag.Int("n", 100, "number of random queries")
	flagSeed       = flag.Int64("seed", 0, "random seed, 0 uses the clock")
	flagProfile    = flag.String("profile", "balanced", "route profile to benchmark")
	flagCpuProfile = flag.String("cpu", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	profile, err := risk.ParseProfile(*flagProfile)
	if err != nil {
		zap.L().Fatal("bad profile", zap.Error(err))
	}

	ctx := context.Background()
	sources := feeds.Source{
		FloodZonesShp: *flagZones,
		AlertsPath:    *flagAlerts,
		GaugesPath:    *flagGauges,
	}

	start := time.Now()
	engine := routing.NewEngine(routing.Config{UseHeuristic: true})
	snap, err := engine.LoadSnapshotFrom(ctx, graph.FileSource{Path: *flagGraphFile}, sources)
	if err != nil {
		zap.L().Fatal("load snapshot", zap.Error(err))
	}
	zap.L().Info("snapshot ready", zap.Duration("took", time.Since(start)))

	// reference search without the heuristic, for answer checking
	reference := route.NewSearch(snap.Graph, snap.Model, false)

	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	zap.L().Info("generating queries", zap.Int64("seed", seed), zap.Int("n", *flagQueries))

	if *flagCpuProfile != "" {
		f, err := os.Create(*flagCpuProfile)
		if err != nil {
			zap.L().Fatal("cpu profile", zap.Error(err))
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	benchmark(ctx, snap, reference, rng, profile, *flagQueries)
}

func benchmark(ctx context.Context, snap *routing.Snapshot, reference *route.Search, rng *rand.Rand, profile risk.Profile, n int) {
	var elapsed time.Duration
	completed := 0
	unreachable := 0
	mismatches := 0
	departTime := time.Now()

	showResults := func() {
		if completed == 0 {
			fmt.Println("no completed queries")
			return
		}
		fmt.Printf("Completed: %d (unreachable: %d)\n", completed, unreachable)
		fmt.Printf("Average runtime: %.3fms\n", float64(elapsed.Nanoseconds())/float64(completed)/1e6)
		fmt.Printf("Heuristic/reference duration mismatches: %d\n", mismatches)
	}

	// show partial results when interrupted
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		showResults()
		os.Exit(0)
	}()

	for i := 0; i < n; i++ {
		req := route.Request{
			Origin:      rng.Intn(snap.Graph.NodeCount()),
			Destination: rng.Intn(snap.Graph.NodeCount()),
			Profile:     profile,
			DepartTime:  departTime,
		}

		start := time.Now()
		candidate, err := snap.Search.FindRoute(ctx, req)
		took := time.Since(start)

		if err != nil {
			unreachable++
			completed++
			continue
		}

		ref, refErr := reference.FindRoute(ctx, req)
		if refErr != nil || math.Abs(ref.DurationSeconds-candidate.DurationSeconds) > 1e-6 {
			mismatches++
			fmt.Printf("%3d: mismatch %d -> %d\n", i, req.Origin, req.Destination)
		}

		fmt.Printf("[%3d TIME, hops, duration] = %12s, %5d, %8.1fs\n",
			i, took, len(candidate.Segments), candidate.DurationSeconds)

		elapsed += took
		completed++
	}
	showResults()
}
