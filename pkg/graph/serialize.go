package graph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/climatenav/navigator/pkg/road"
)

// Road graph text format: node count, edge count, then one line per node
// ("id lon lat") and one tab-separated line per edge
// ("from to class speed wayid surface name geom") where geom is a
// semicolon-separated list of "lon,lat" pairs. Lines starting with '#' are
// comments.

const (
	parseNodeCount = iota
	parseEdgeCount
	parseNodes
	parseEdges
)

func WriteGraph(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n%d\n", g.NodeCount(), g.EdgeCount())

	fmt.Fprintln(bw, "# nodes")
	for i := 0; i < g.NodeCount(); i++ {
		n := g.GetNode(i)
		fmt.Fprintf(bw, "%d %s %s\n", i, formatFloat(n[0]), formatFloat(n[1]))
	}

	fmt.Fprintln(bw, "# edges")
	for i := 0; i < g.EdgeCount(); i++ {
		e := g.GetEdge(i)
		speed := 0.0
		if e.TravelTimeSeconds > 0 {
			speed = e.LengthMeters / e.TravelTimeSeconds * 3.6
		}
		geom := make([]string, len(e.Geometry))
		for j, p := range e.Geometry {
			geom[j] = formatFloat(p[0]) + "," + formatFloat(p[1])
		}
		fmt.Fprintf(bw, "%d\t%d\t%d\t%s\t%d\t%s\t%s\t%s\n",
			e.From, e.To, int(e.Class), formatFloat(speed), e.WayID,
			e.Surface, e.Name, strings.Join(geom, ";"))
	}

	return bw.Flush()
}

func WriteGraphFile(g Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return eris.Wrapf(err, "graph: create %s", filename)
	}
	defer file.Close()
	return WriteGraph(file, g)
}

func ReadGraph(r io.Reader) (*AdjacencyArrayGraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	alg := NewAdjacencyListGraph()
	numNodes, numEdges := 0, 0
	parsedNodes, parsedEdges := 0, 0

	state := parseNodeCount
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		switch state {
		case parseNodeCount:
			val, err := strconv.Atoi(line)
			if err != nil {
				return nil, eris.Wrap(err, "graph: parse node count")
			}
			numNodes = val
			state = parseEdgeCount
		case parseEdgeCount:
			val, err := strconv.Atoi(line)
			if err != nil {
				return nil, eris.Wrap(err, "graph: parse edge count")
			}
			numEdges = val
			if numNodes == 0 {
				state = parseEdges
			} else {
				state = parseNodes
			}
		case parseNodes:
			var id int
			var lon, lat float64
			if _, err := fmt.Sscanf(line, "%d %f %f", &id, &lon, &lat); err != nil {
				return nil, eris.Wrapf(err, "graph: parse node %q", line)
			}
			alg.AddNode(orb.Point{lon, lat})
			parsedNodes++
			if parsedNodes == numNodes {
				state = parseEdges
			}
		case parseEdges:
			if err := parseEdgeLine(alg, line); err != nil {
				return nil, err
			}
			parsedEdges++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "graph: scan")
	}

	if alg.NodeCount() != numNodes || alg.EdgeCount() != numEdges {
		return nil, eris.Errorf("graph: header promised %d nodes / %d edges, parsed %d / %d",
			numNodes, numEdges, alg.NodeCount(), alg.EdgeCount())
	}

	return NewAdjacencyArrayFromList(alg), nil
}

func ReadGraphFile(filename string) (*AdjacencyArrayGraph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "graph: open %s", filename)
	}
	defer file.Close()
	return ReadGraph(file)
}

func parseEdgeLine(alg *AdjacencyListGraph, line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) != 8 {
		return eris.Errorf("graph: malformed edge line %q", line)
	}

	from, err := strconv.Atoi(fields[0])
	if err != nil {
		return eris.Wrapf(err, "graph: edge from %q", fields[0])
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return eris.Wrapf(err, "graph: edge to %q", fields[1])
	}
	class, err := strconv.Atoi(fields[2])
	if err != nil {
		return eris.Wrapf(err, "graph: edge class %q", fields[2])
	}
	speed, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return eris.Wrapf(err, "graph: edge speed %q", fields[3])
	}
	wayID, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return eris.Wrapf(err, "graph: edge way id %q", fields[4])
	}

	var geom orb.LineString
	for _, pair := range strings.Split(fields[7], ";") {
		lonlat := strings.SplitN(pair, ",", 2)
		if len(lonlat) != 2 {
			return eris.Errorf("graph: malformed geometry point %q", pair)
		}
		lon, err := strconv.ParseFloat(lonlat[0], 64)
		if err != nil {
			return eris.Wrapf(err, "graph: geometry lon %q", lonlat[0])
		}
		lat, err := strconv.ParseFloat(lonlat[1], 64)
		if err != nil {
			return eris.Wrapf(err, "graph: geometry lat %q", lonlat[1])
		}
		geom = append(geom, orb.Point{lon, lat})
	}

	return alg.AddEdge(from, to, EdgeSpec{
		Geometry: geom,
		SpeedKmh: speed,
		Class:    road.Class(class),
		Surface:  fields[5],
		Name:     fields[6],
		WayID:    wayID,
	})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FileSource reads a serialized road graph from disk on demand.
type FileSource struct {
	Path string
}

func (s FileSource) RoadGraph(_ context.Context) (*AdjacencyArrayGraph, error) {
	return ReadGraphFile(s.Path)
}
