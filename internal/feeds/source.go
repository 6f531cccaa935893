package feeds

import (
	"context"

	"github.com/climatenav/navigator/internal/nfhl"
	"github.com/climatenav/navigator/pkg/hazard"
)

// Source aggregates all configured hazard inputs into one feature set.
// Paths left empty are skipped.
type Source struct {
	FloodZonesShp string
	AlertsPath    string
	GaugesPath    string
}

func (s Source) HazardFeatures(_ context.Context) ([]hazard.Feature, error) {
	var features []hazard.Feature

	if s.FloodZonesShp != "" {
		zones, err := nfhl.Loader{Path: s.FloodZonesShp}.Load()
		if err != nil {
			return nil, err
		}
		features = append(features, zones...)
	}
	if s.AlertsPath != "" {
		alerts, err := LoadAlerts(s.AlertsPath)
		if err != nil {
			return nil, err
		}
		features = append(features, alerts...)
	}
	if s.GaugesPath != "" {
		gauges, err := LoadGauges(s.GaugesPath)
		if err != nil {
			return nil, err
		}
		features = append(features, gauges...)
	}

	return features, nil
}
