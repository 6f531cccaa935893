package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/climatenav/navigator/pkg/hazard"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/routing"
)

// Coordinate is a lat/lon pair as wire JSON.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRequest asks for one route between two coordinates.
type RouteRequest struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Profile     string     `json:"profile"`
	Avoid       []string   `json:"avoid,omitempty"`
	DepartTime  *time.Time `json:"depart_time,omitempty"`
}

// CompareRequest asks for the fastest/balanced/safest comparison.
type CompareRequest struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Avoid       []string   `json:"avoid,omitempty"`
	DepartTime  *time.Time `json:"depart_time,omitempty"`
}

// SegmentResult is one route segment on the wire.
type SegmentResult struct {
	EdgeID          int     `json:"edge_id"`
	Order           int     `json:"order"`
	Name            string  `json:"name,omitempty"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	RiskScore       float64 `json:"risk_score"`
}

// RouteResult is the wire form of a route candidate.
type RouteResult struct {
	RouteID         uuid.UUID               `json:"route_id"`
	Profile         string                  `json:"profile"`
	SnapshotVersion int64                   `json:"snapshot_version"`
	DistanceMeters  float64                 `json:"total_distance_meters"`
	DurationSeconds float64                 `json:"total_duration_seconds"`
	RiskScore       float64                 `json:"risk_score"`
	RiskFactors     map[hazard.Type]float64 `json:"risk_factors,omitempty"`
	Segments        []SegmentResult         `json:"segments"`
	Geometry        []Coordinate            `json:"geometry"`
	Hazards         []route.HazardRef       `json:"hazards,omitempty"`
	AvoidedHazards  []route.HazardRef       `json:"avoided_hazards,omitempty"`
	CalculatedAt    time.Time               `json:"calculated_at"`
	ValidUntil      time.Time               `json:"valid_until"`
}

// CompareResult is the wire form of a route comparison.
type CompareResult struct {
	ComparisonID          uuid.UUID   `json:"comparison_id"`
	Origin                Coordinate  `json:"origin"`
	Destination           Coordinate  `json:"destination"`
	Fastest               RouteResult `json:"fastest_route"`
	Balanced              RouteResult `json:"balanced_route"`
	Safest                RouteResult `json:"safest_route"`
	SafetyTradeOffMinutes float64     `json:"safety_trade_off_minutes"`
	RiskReductionPercent  float64     `json:"risk_reduction_percent"`
	SnapshotVersion       int64       `json:"snapshot_version"`
	ComparedAt            time.Time   `json:"compared_at"`
}

// SnapshotResult reports the active snapshot version.
type SnapshotResult struct {
	Version int64 `json:"version"`
}

// RoutingServicer defines the api actions the HTTP controller binds to.
type RoutingServicer interface {
	ResolveRoute(ctx context.Context, req RouteRequest) (*RouteResult, error)
	CompareRoutes(ctx context.Context, req CompareRequest) (*CompareResult, error)
	SnapshotVersion(ctx context.Context) (*SnapshotResult, error)
}

func newRouteResult(c *route.Candidate) RouteResult {
	segments := make([]SegmentResult, len(c.Segments))
	for i, s := range c.Segments {
		segments[i] = SegmentResult{
			EdgeID:          s.EdgeID,
			Order:           s.Order,
			Name:            s.Name,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
			RiskScore:       s.RiskScore,
		}
	}

	geometry := make([]Coordinate, len(c.Geometry))
	for i, p := range c.Geometry {
		geometry[i] = Coordinate{Lat: p[1], Lon: p[0]}
	}

	return RouteResult{
		RouteID:         c.ID,
		Profile:         c.Profile.String(),
		SnapshotVersion: c.SnapshotVersion,
		DistanceMeters:  c.DistanceMeters,
		DurationSeconds: c.DurationSeconds,
		RiskScore:       c.RiskScore,
		RiskFactors:     c.RiskByType,
		Segments:        segments,
		Geometry:        geometry,
		Hazards:         c.Encountered,
		AvoidedHazards:  c.Avoided,
		CalculatedAt:    c.CalculatedAt,
		ValidUntil:      c.ValidUntil,
	}
}

func newCompareResult(r *routing.ComparisonResult) CompareResult {
	return CompareResult{
		ComparisonID:          r.ID,
		Origin:                Coordinate{Lat: r.Origin[1], Lon: r.Origin[0]},
		Destination:           Coordinate{Lat: r.Destination[1], Lon: r.Destination[0]},
		Fastest:               newRouteResult(r.Fastest),
		Balanced:              newRouteResult(r.Balanced),
		Safest:                newRouteResult(r.Safest),
		SafetyTradeOffMinutes: r.SafetyTradeOffMinutes,
		RiskReductionPercent:  r.RiskReductionPercent,
		SnapshotVersion:       r.SnapshotVersion,
		ComparedAt:            r.ComparedAt,
	}
}
