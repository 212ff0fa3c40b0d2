// Package compass turns headings into human-facing output: half-wind
// direction names, spoken readouts, and the smoothed heading that should be
// displayed at any instant.
package compass

import (
	"fmt"

	"github.com/truenorth/compassd/internal/geomath"
)

// Order follows the half-wind index: sector 0 is north, increasing clockwise.
var directionNames = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

var spokenNames = [16]string{
	"north", "north-northeast", "northeast", "east-northeast",
	"east", "east-southeast", "southeast", "south-southeast",
	"south", "south-southwest", "southwest", "west-southwest",
	"west", "west-northwest", "northwest", "north-northwest",
}

// DirectionName returns the abbreviated half-wind name for a heading,
// such as "NNE".
func DirectionName(heading float64) string {
	return directionNames[geomath.HalfWindIndex(heading)]
}

// SpokenDirection returns the full half-wind name for a heading, suitable
// for a text-to-speech readout.
func SpokenDirection(heading float64) string {
	return spokenNames[geomath.HalfWindIndex(heading)]
}

// Readout formats a heading the way it should be read aloud, for example
// "Heading 270 degrees west". A rounded heading of exactly 1 uses the
// singular form.
func Readout(heading float64) string {
	deg := geomath.ModInt(int(geomath.Mod(heading, 360)+0.5), 360)

	unit := "degrees"
	if deg == 1 {
		unit = "degree"
	}

	return fmt.Sprintf("Heading %d %s %s", deg, unit, SpokenDirection(heading))
}
