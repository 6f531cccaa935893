package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/climatenav/navigator/internal/pbf"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/road"
)

var flagPbfFile = flag.String("pbf", "", "OSM PBF extract to import")
var flagOutputFile = flag.String("out", "road_graph.txt", "output graph file")
var flagNoMerge = flag.Bool("no-merge", false, "skip merging consecutive ways")

func main() {
	flag.Parse()
	if *flagPbfFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	start := time.Now()
	importer := pbf.NewRoadImporter(*flagPbfFile)
	if err := importer.Import(); err != nil {
		zap.L().Fatal("import failed", zap.Error(err))
	}
	zap.L().Info("import done", zap.Duration("took", time.Since(start)))

	segments := importer.Segments()
	if !*flagNoMerge {
		start = time.Now()
		merger := road.NewMerger(segments)
		merger.Merge()
		segments = merger.Segments()
		zap.L().Info("merge done",
			zap.Duration("took", time.Since(start)),
			zap.Int("segments", len(segments)),
			zap.Int("merges", merger.MergeCount()),
			zap.Int("unmergable", merger.UnmergableCount()))
	}

	start = time.Now()
	g, err := pbf.BuildGraph(segments)
	if err != nil {
		zap.L().Fatal("graph build failed", zap.Error(err))
	}
	if err := graph.Validate(g); err != nil {
		zap.L().Fatal("graph invalid", zap.Error(err))
	}
	zap.L().Info("build done", zap.Duration("took", time.Since(start)))

	start = time.Now()
	if err := graph.WriteGraphFile(g, *flagOutputFile); err != nil {
		zap.L().Fatal("write failed", zap.Error(err))
	}
	zap.L().Info("graph written",
		zap.String("file", *flagOutputFile),
		zap.Duration("took", time.Since(start)))
}
