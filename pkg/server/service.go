package server

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/climatenav/navigator/pkg/routing"
)

// RoutingApiService implements RoutingServicer on top of the route engine.
type RoutingApiService struct {
	engine *routing.Engine
}

func NewRoutingApiService(engine *routing.Engine) *RoutingApiService {
	return &RoutingApiService{engine: engine}
}

func (s *RoutingApiService) ResolveRoute(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	candidate, err := s.engine.ResolveRoute(ctx,
		point(req.Origin), point(req.Destination),
		req.Profile, req.Avoid, req.DepartTime)
	if err != nil {
		return nil, err
	}
	result := newRouteResult(candidate)
	return &result, nil
}

func (s *RoutingApiService) CompareRoutes(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	comparison, err := s.engine.CompareRoutes(ctx,
		point(req.Origin), point(req.Destination),
		req.Avoid, req.DepartTime)
	if err != nil {
		return nil, err
	}
	result := newCompareResult(comparison)
	return &result, nil
}

func (s *RoutingApiService) SnapshotVersion(context.Context) (*SnapshotResult, error) {
	return &SnapshotResult{Version: s.engine.CurrentSnapshotVersion()}, nil
}

func point(c Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}
