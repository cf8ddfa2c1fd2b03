package domain

import "strings"

// Location is the probable install location of a material on site.
type Location string

const (
	// LocationTowerTop covers antennas, RRUs, tower sections, guy hardware, ODUs.
	LocationTowerTop Location = "tower_top"
	// LocationRackInside covers IDUs, modems, routers, switches, rectifiers.
	LocationRackInside Location = "rack_inside"
	// LocationRackBottom covers batteries, heavy power equipment, grounding bars.
	LocationRackBottom Location = "rack_bottom"
)

// DefaultLocation is assumed when the classifier cannot decide.
const DefaultLocation = LocationRackInside

// ParseLocation parses a classifier output into a known location.
func ParseLocation(s string) (Location, bool) {
	switch Location(strings.ToLower(strings.TrimSpace(s))) {
	case LocationTowerTop:
		return LocationTowerTop, true
	case LocationRackInside:
		return LocationRackInside, true
	case LocationRackBottom:
		return LocationRackBottom, true
	}
	return "", false
}
