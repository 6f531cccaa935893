package nfhl

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/hazard"
)

// Loader reads FEMA National Flood Hazard Layer shapefiles and produces
// flood zone hazard features. Flood zones have no validity window, they
// stay active until the next snapshot replaces them.
type Loader struct {
	Path string
}

// Load reads the shapefile at Path. Zones outside any mapped flood
// hazard (unshaded X, C, D) are dropped, they carry no routing risk.
func (l Loader) Load() ([]hazard.Feature, error) {
	reader, err := shp.Open(l.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "nfhl: open shapefile %s", l.Path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		val := strings.TrimRight(reader.Attribute(idx), "\x00")
		return strings.TrimSpace(val)
	}

	var features []hazard.Feature
	var skipped int
	record := 0

	for reader.Next() {
		record++
		_, shape := reader.Shape()

		zone := strings.ToUpper(attr("fld_zone"))
		subtype := strings.ToUpper(attr("zone_subty"))
		severity, ok := zoneSeverity(zone, subtype)
		if !ok {
			skipped++
			continue
		}

		polygon, pok := shape.(*shp.Polygon)
		if !pok {
			skipped++
			continue
		}
		geom := polygonGeometry(polygon)
		if geom == nil {
			skipped++
			continue
		}

		id := attr("fld_ar_id")
		if id == "" {
			id = fmt.Sprintf("nfhl-%d", record)
		}

		features = append(features, hazard.Feature{
			ID:       id,
			Kind:     hazard.KindFloodZone,
			Type:     hazard.TypeFlood,
			Severity: severity,
			Geometry: geom,
			Source:   hazard.Citation{Name: "FEMA NFHL", URL: "https://www.fema.gov/flood-maps/national-flood-hazard-layer"},
			Headline: zoneHeadline(zone, subtype),
		})
	}

	if skipped > 0 {
		zap.L().Debug("nfhl: skipped records",
			zap.String("file", l.Path),
			zap.Int("skipped", skipped))
	}
	zap.L().Info("nfhl flood zones loaded",
		zap.String("file", l.Path),
		zap.Int("zones", len(features)))
	return features, nil
}

// zoneSeverity maps a FEMA zone code onto the alert severity scale.
// Coastal velocity zones outrank riverine special flood hazard areas,
// the shaded X (0.2 percent annual chance) band sits below both.
func zoneSeverity(zone, subtype string) (hazard.Severity, bool) {
	switch {
	case zone == "V" || zone == "VE":
		return hazard.SeverityExtreme, true
	case zone == "A" || zone == "AE" || zone == "AH" || zone == "AO" ||
		zone == "A99" || zone == "AR":
		return hazard.SeveritySevere, true
	case zone == "X" && strings.Contains(subtype, "0.2"):
		return hazard.SeverityModerate, true
	case zone == "X" && strings.Contains(subtype, "LEVEE"):
		return hazard.SeverityModerate, true
	default:
		return hazard.SeverityUnknown, false
	}
}

func zoneHeadline(zone, subtype string) string {
	if subtype != "" {
		return fmt.Sprintf("FEMA flood zone %s (%s)", zone, strings.ToLower(subtype))
	}
	return fmt.Sprintf("FEMA flood zone %s", zone)
}

// polygonGeometry converts a shapefile polygon to an orb geometry. Each
// part becomes its own polygon of the result, hole detection is not
// attempted; a hole counted as a zone only over-reports exposure.
func polygonGeometry(p *shp.Polygon) orb.Geometry {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var mp orb.MultiPolygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		ring := make(orb.Ring, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{p.Points[j].X, p.Points[j].Y})
		}
		mp = append(mp, orb.Polygon{ring})
	}

	if len(mp) == 0 {
		return nil
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}
