package pbf

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/road"
)

// RoadImporter extracts routable road segments from an OSM PBF extract.
// The file is decoded twice, first for node coordinates, then for the
// ways that reference them.
type RoadImporter struct {
	filename string
	segments []*road.Segment
	nodes    map[int64]orb.Point
}

func NewRoadImporter(filename string) *RoadImporter {
	return &RoadImporter{
		filename: filename,
		segments: make([]*road.Segment, 0),
		nodes:    make(map[int64]orb.Point),
	}
}

func (ri *RoadImporter) Import() error {
	if err := ri.collectNodes(); err != nil {
		return err
	}

	file, err := os.Open(ri.filename)
	if err != nil {
		return eris.Wrapf(err, "pbf: open %s", ri.filename)
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return eris.Wrap(err, "pbf: start decoder")
	}

	var wg sync.WaitGroup
	segmentChan := make(chan *road.Segment, 1000)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for segment := range segmentChan {
			ri.segments = append(ri.segments, segment)
		}
	}()

	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			close(segmentChan)
			wg.Wait()
			return eris.Wrap(err, "pbf: decode")
		}
		if way, ok := v.(*osmpbf.Way); ok {
			if segment := ri.segmentFromWay(way); segment != nil {
				segmentChan <- segment
			}
		}
	}
	close(segmentChan)
	wg.Wait()

	zap.L().Info("pbf import finished",
		zap.String("file", ri.filename),
		zap.Int("nodes", len(ri.nodes)),
		zap.Int("segments", len(ri.segments)))
	return nil
}

func (ri *RoadImporter) Segments() []*road.Segment {
	return ri.segments
}

func (ri *RoadImporter) segmentFromWay(way *osmpbf.Way) *road.Segment {
	highway, ok := way.Tags["highway"]
	if !ok {
		return nil
	}
	class := road.ClassFromHighway(highway)
	if class == road.Unknown {
		return nil
	}

	points := make([]orb.Point, 0, len(way.NodeIDs))
	for _, nodeID := range way.NodeIDs {
		if point, ok := ri.nodes[nodeID]; ok {
			points = append(points, point)
		}
	}
	// extracts clipped at a bounding box leave ways with dangling node refs
	if len(points) < 2 {
		return nil
	}

	return &road.Segment{
		ID:          way.ID,
		Class:       class,
		Name:        way.Tags["name"],
		Surface:     way.Tags["surface"],
		OneWay:      way.Tags["oneway"] == "yes" || way.Tags["junction"] == "roundabout",
		MaxSpeedKmh: parseMaxSpeed(way.Tags["maxspeed"]),
		Points:      points,
		Tags:        way.Tags,
	}
}

// parseMaxSpeed reads an OSM maxspeed tag value in km/h. Returns 0 for
// values it cannot interpret, the road class default applies then.
func parseMaxSpeed(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" || value == "signals" {
		return 0
	}
	mph := false
	if rest, ok := strings.CutSuffix(value, "mph"); ok {
		mph = true
		value = strings.TrimSpace(rest)
	} else if rest, ok := strings.CutSuffix(value, "km/h"); ok {
		value = strings.TrimSpace(rest)
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed <= 0 {
		return 0
	}
	if mph {
		speed *= 1.609344
	}
	return speed
}

func (ri *RoadImporter) collectNodes() error {
	file, err := os.Open(ri.filename)
	if err != nil {
		return eris.Wrapf(err, "pbf: open %s", ri.filename)
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return eris.Wrap(err, "pbf: start decoder")
	}

	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return eris.Wrap(err, "pbf: decode")
		}
		if node, ok := v.(*osmpbf.Node); ok {
			ri.nodes[node.ID] = orb.Point{node.Lon, node.Lat}
		}
	}
	return nil
}
