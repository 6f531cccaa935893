package route

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/risk"
)

// HazardRef is the reportable identity of a hazard feature a route
// encounters or avoids, including its source citation.
type HazardRef struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Type     hazard.Type     `json:"type"`
	Severity string          `json:"severity"`
	Headline string          `json:"headline,omitempty"`
	Source   hazard.Citation `json:"source"`
}

// Segment is one edge of a delivered route with its recomputed distance,
// duration and risk.
type Segment struct {
	EdgeID          graph.EdgeId   `json:"edge_id"`
	Order           int            `json:"order"`
	Name            string         `json:"name,omitempty"`
	DistanceMeters  float64        `json:"distance_meters"`
	DurationSeconds float64        `json:"duration_seconds"`
	RiskScore       float64        `json:"risk_score"`
	Geometry        orb.LineString `json:"-"`
}

// Candidate is the output of one search: the path, its per-segment
// breakdown and the aggregate risk assessment. ID and the timestamps are
// assigned by the orchestrator; everything else is fully determined by the
// request and the snapshot.
type Candidate struct {
	ID              uuid.UUID
	Profile         risk.Profile
	SnapshotVersion int64
	Nodes           []graph.NodeId
	Segments        []Segment
	Geometry        orb.LineString
	DistanceMeters  float64
	DurationSeconds float64
	RiskScore       float64
	RiskByType      map[hazard.Type]float64
	Encountered     []HazardRef
	Avoided         []HazardRef
	CalculatedAt    time.Time
	ValidUntil      time.Time
}

func (s *Search) buildCandidate(req Request, path []graph.EdgeId) *Candidate {
	c := &Candidate{
		Profile:  req.Profile,
		Nodes:    []graph.NodeId{req.Origin},
		Segments: make([]Segment, 0, len(path)),
	}

	seen := make(map[string]struct{})
	for order, id := range path {
		e := s.g.GetEdge(id)
		riskScore, byType, features := s.model.EdgeRisk(id, req.DepartTime)

		c.Nodes = append(c.Nodes, e.To)
		c.Segments = append(c.Segments, Segment{
			EdgeID:          id,
			Order:           order,
			Name:            e.Name,
			DistanceMeters:  e.LengthMeters,
			DurationSeconds: e.TravelTimeSeconds,
			RiskScore:       riskScore,
			Geometry:        e.Geometry,
		})

		c.DistanceMeters += e.LengthMeters
		c.DurationSeconds += e.TravelTimeSeconds
		c.RiskScore += riskScore
		for typ, contribution := range byType {
			if c.RiskByType == nil {
				c.RiskByType = make(map[hazard.Type]float64)
			}
			c.RiskByType[typ] += contribution
		}

		for _, f := range features {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			c.Encountered = append(c.Encountered, newHazardRef(f))
		}

		c.Geometry = appendPolyline(c.Geometry, e.Geometry)
	}

	sortRefs(c.Encountered)
	return c
}

// AvoidedHazards returns the hazards intersecting the fastest route that
// intersect no edge of the delivered route for the same endpoints.
func AvoidedHazards(fastest, delivered *Candidate) []HazardRef {
	if fastest == nil || delivered == nil {
		return nil
	}
	onDelivered := make(map[string]struct{}, len(delivered.Encountered))
	for _, ref := range delivered.Encountered {
		onDelivered[ref.ID] = struct{}{}
	}

	var avoided []HazardRef
	for _, ref := range fastest.Encountered {
		if _, ok := onDelivered[ref.ID]; !ok {
			avoided = append(avoided, ref)
		}
	}
	sortRefs(avoided)
	return avoided
}

func newHazardRef(f *hazard.Feature) HazardRef {
	return HazardRef{
		ID:       f.ID,
		Kind:     f.Kind.String(),
		Type:     f.Type,
		Severity: f.Severity.String(),
		Headline: f.Headline,
		Source:   f.Source,
	}
}

func sortRefs(refs []HazardRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}

// appendPolyline extends the route geometry, dropping the duplicated joint
// vertex between consecutive edges.
func appendPolyline(route, edge orb.LineString) orb.LineString {
	if len(route) > 0 && len(edge) > 0 && route[len(route)-1] == edge[0] {
		return append(route, edge[1:]...)
	}
	return append(route, edge...)
}
