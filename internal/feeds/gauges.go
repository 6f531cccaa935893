package feeds

import (
	"encoding/json"
	"os"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/hazard"
)

// gaugeRecord is the wire form of one river gauge observation, the shape
// produced by the gauge fetcher from USGS and NOAA NWPS data.
type gaugeRecord struct {
	GaugeID            string  `json:"gauge_id"`
	Name               string  `json:"name"`
	RiverName          string  `json:"river_name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	CurrentStageFeet   float64 `json:"current_stage_feet"`
	ForecastStageFeet  float64 `json:"forecast_stage_feet"`
	MinorFloodStage    float64 `json:"minor_flood_stage"`
	ModerateFloodStage float64 `json:"moderate_flood_stage"`
	MajorFloodStage    float64 `json:"major_flood_stage"`
	Source             string  `json:"source"`
	SourceURL          string  `json:"source_url"`
}

// LoadGauges reads a river gauge feed file. The forecast stage governs
// when present, otherwise the current observation. Gauges without flood
// thresholds are skipped, their stage cannot be interpreted.
func LoadGauges(path string) ([]hazard.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feeds: read gauges %s", path)
	}

	var records []gaugeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "feeds: parse gauges %s", path)
	}

	features := make([]hazard.Feature, 0, len(records))
	var skipped int
	for _, rec := range records {
		if rec.MinorFloodStage <= 0 || rec.ModerateFloodStage <= 0 || rec.MajorFloodStage <= 0 {
			skipped++
			continue
		}
		stage := rec.ForecastStageFeet
		if stage <= 0 {
			stage = rec.CurrentStageFeet
		}
		forecast := &hazard.GaugeForecast{
			GaugeID:           rec.GaugeID,
			RiverName:         rec.RiverName,
			StageFeet:         stage,
			MinorStageFeet:    rec.MinorFloodStage,
			ModerateStageFeet: rec.ModerateFloodStage,
			MajorStageFeet:    rec.MajorFloodStage,
		}
		features = append(features, hazard.Feature{
			ID:       rec.GaugeID,
			Kind:     hazard.KindRiverGaugeForecast,
			Type:     hazard.TypeRiverGauge,
			Severity: gaugeSeverity(forecast),
			Geometry: orb.Point{rec.Lon, rec.Lat},
			Source:   hazard.Citation{Name: rec.Source, URL: rec.SourceURL},
			Headline: gaugeHeadline(rec),
			Gauge:    forecast,
		})
	}

	if skipped > 0 {
		zap.L().Warn("feeds: gauges without flood thresholds skipped",
			zap.String("file", path),
			zap.Int("skipped", skipped))
	}
	return features, nil
}

// gaugeSeverity grades the gauge by which flood threshold its stage has
// reached.
func gaugeSeverity(g *hazard.GaugeForecast) hazard.Severity {
	switch {
	case g.StageFeet >= g.MajorStageFeet:
		return hazard.SeverityExtreme
	case g.StageFeet >= g.ModerateStageFeet:
		return hazard.SeveritySevere
	case g.StageFeet >= g.MinorStageFeet:
		return hazard.SeverityModerate
	default:
		return hazard.SeverityMinor
	}
}

func gaugeHeadline(rec gaugeRecord) string {
	name := rec.Name
	if name == "" {
		name = rec.GaugeID
	}
	if rec.RiverName != "" {
		return rec.RiverName + " at " + name
	}
	return name
}
