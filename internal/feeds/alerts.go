package feeds

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/hazard"
)

// alertRecord is the wire form of one weather alert, the shape produced
// by the alert fetcher from NWS CAP data.
type alertRecord struct {
	AlertID        string      `json:"alert_id"`
	EventType      string      `json:"event_type"`
	Severity       string      `json:"severity"`
	Headline       string      `json:"headline"`
	EffectiveStart *time.Time  `json:"effective_start"`
	EffectiveEnd   *time.Time  `json:"effective_end"`
	SourceURL      string      `json:"source_url"`
	Polygon        [][]float64 `json:"polygon"`
}

// LoadAlerts reads a weather alert feed file. Each alert becomes one
// polygonal feature; rainfall events weigh as rain intensity, everything
// else as an alert.
func LoadAlerts(path string) ([]hazard.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feeds: read alerts %s", path)
	}

	var records []alertRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "feeds: parse alerts %s", path)
	}

	features := make([]hazard.Feature, 0, len(records))
	var skipped int
	for _, rec := range records {
		ring := alertRing(rec.Polygon)
		if ring == nil {
			skipped++
			continue
		}
		features = append(features, hazard.Feature{
			ID:             rec.AlertID,
			Kind:           hazard.KindWeatherAlert,
			Type:           alertType(rec.EventType),
			Severity:       hazard.ParseSeverity(rec.Severity),
			Geometry:       orb.Polygon{ring},
			EffectiveStart: rec.EffectiveStart,
			EffectiveEnd:   rec.EffectiveEnd,
			Source:         hazard.Citation{Name: "NWS", URL: rec.SourceURL},
			Headline:       rec.Headline,
		})
	}

	if skipped > 0 {
		zap.L().Warn("feeds: alerts without usable polygon skipped",
			zap.String("file", path),
			zap.Int("skipped", skipped))
	}
	return features, nil
}

func alertType(eventType string) hazard.Type {
	if strings.Contains(strings.ToLower(eventType), "rain") {
		return hazard.TypeRainIntensity
	}
	return hazard.TypeWeatherAlert
}

func alertRing(coords [][]float64) orb.Ring {
	if len(coords) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(coords)+1)
	for _, c := range coords {
		if len(c) != 2 {
			return nil
		}
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
