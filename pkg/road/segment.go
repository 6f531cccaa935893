package road

import (
	"github.com/paulmach/orb"
)

type Class int

const (
	Unknown Class = iota
	Motorway
	Trunk
	Primary
	Secondary
	Tertiary
	Residential
)

func (c Class) String() string {
	return []string{"unknown", "motorway", "trunk", "primary", "secondary", "tertiary", "residential"}[c]
}

// ClassFromHighway maps an OSM highway tag to a road class. Link roads share
// the class of the road they connect to.
func ClassFromHighway(highway string) Class {
	switch highway {
	case "motorway", "motorway_link":
		return Motorway
	case "trunk", "trunk_link":
		return Trunk
	case "primary", "primary_link":
		return Primary
	case "secondary", "secondary_link":
		return Secondary
	case "tertiary", "tertiary_link":
		return Tertiary
	case "residential", "unclassified", "living_street":
		return Residential
	default:
		return Unknown
	}
}

// DefaultSpeedKmh returns the assumed free-flow speed for a road class when
// the way carries no maxspeed tag.
func (c Class) DefaultSpeedKmh() float64 {
	switch c {
	case Motorway:
		return 110
	case Trunk:
		return 90
	case Primary:
		return 70
	case Secondary:
		return 60
	case Tertiary:
		return 45
	case Residential:
		return 30
	default:
		return 40
	}
}

// Segment is one imported OSM way, the intermediate form between the PBF
// extract and the routing graph.
type Segment struct {
	ID          int64
	Class       Class
	Name        string
	Surface     string
	OneWay      bool
	MaxSpeedKmh float64
	Points      []orb.Point
	Tags        map[string]string
}

// SpeedKmh returns the tagged maxspeed, falling back to the class default.
func (s *Segment) SpeedKmh() float64 {
	if s.MaxSpeedKmh > 0 {
		return s.MaxSpeedKmh
	}
	return s.Class.DefaultSpeedKmh()
}
