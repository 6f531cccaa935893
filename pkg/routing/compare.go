package routing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/route"
)

// ComparisonResult holds the three candidates for one origin-destination
// pair plus the derived trade-off metrics.
type ComparisonResult struct {
	ID                    uuid.UUID
	Origin                orb.Point
	Destination           orb.Point
	Fastest               *route.Candidate
	Balanced              *route.Candidate
	Safest                *route.Candidate
	SafetyTradeOffMinutes float64
	RiskReductionPercent  float64
	SnapshotVersion       int64
	ComparedAt            time.Time
}

// CompareRoutes runs fastest, balanced and safest searches for the same
// endpoints in parallel, all pinned to the snapshot captured at entry.
// If any search finds no route the whole comparison fails; partial
// comparisons are never returned.
func (e *Engine) CompareRoutes(ctx context.Context, origin, destination orb.Point, avoidTypes []string, departTime *time.Time) (*ComparisonResult, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	req, err := e.resolveRequest(snap, origin, destination, risk.ProfileFastest, avoidTypes, departTime)
	if err != nil {
		return nil, err
	}

	profiles := risk.Profiles()
	candidates := make([]*route.Candidate, len(profiles))

	grp, gctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		i, profile := i, profile
		grp.Go(func() error {
			profileReq := req
			profileReq.Profile = profile
			c, err := snap.Search.FindRoute(gctx, profileReq)
			if err != nil {
				return eris.Wrapf(err, "%s search", profile)
			}
			candidates[i] = c
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	fastest, balanced, safest := candidates[0], candidates[1], candidates[2]
	balanced.Avoided = route.AvoidedHazards(fastest, balanced)
	safest.Avoided = route.AvoidedHazards(fastest, safest)
	for _, c := range candidates {
		e.finalize(c, snap)
	}

	result := &ComparisonResult{
		ID:                    uuid.New(),
		Origin:                origin,
		Destination:           destination,
		Fastest:               fastest,
		Balanced:              balanced,
		Safest:                safest,
		SafetyTradeOffMinutes: (safest.DurationSeconds - fastest.DurationSeconds) / 60,
		RiskReductionPercent:  riskReduction(fastest.RiskScore, safest.RiskScore),
		SnapshotVersion:       snap.Version,
		ComparedAt:            e.now(),
	}
	return result, nil
}

// riskReduction reports how much of the fastest route's risk the safest
// route sheds, in percent. A risk-free fastest route reduces nothing; the
// metric is 0 by definition there, never a division by zero.
func riskReduction(fastestRisk, safestRisk float64) float64 {
	if fastestRisk == 0 {
		return 0
	}
	return (fastestRisk - safestRisk) / fastestRisk * 100
}
