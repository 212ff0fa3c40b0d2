// Package geomath provides the angular and great-circle arithmetic behind
// the compass: floor-style modulo, half-wind boxing, forward azimuth,
// haversine distance and the shortest-arc animation decision.
package geomath

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

const (
	halfWinds   = 16
	sectorWidth = 360.0 / halfWinds
)

// Mod calculates a mod b in a way that respects negative dividends, so the
// result is always in [0, b). For example Mod(-1, 360) == 359, not -1.
// It panics if b is not positive.
func Mod(a, b float64) float64 {
	if b <= 0 {
		panic("geomath: Mod divisor must be positive")
	}
	return math.Mod(math.Mod(a, b)+b, b)
}

// ModInt is the integer counterpart of Mod: ModInt(-1, 5) == 4.
// It panics if b is not positive.
func ModInt(a, b int) int {
	if b <= 0 {
		panic("geomath: ModInt divisor must be positive")
	}
	return (a%b + b) % b
}

// HalfWindIndex boxes a heading into one of the 16 half-wind sectors,
// returning an index in [0, 16) suitable for a direction name table.
// Sector 0 is centered on north, so headings in [348.75, 360) wrap back
// into it.
func HalfWindIndex(heading float64) int {
	displaced := Mod(heading+sectorWidth/2, 360)
	return int(displaced / sectorWidth)
}

// Bearing returns the initial great-circle bearing from point 1 to point 2,
// in degrees clockwise from true north, normalized to [0, 360). Coincident
// points yield 0.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := toRadians(lat1)
	φ2 := toRadians(lat2)
	Δλ := toRadians(lon2 - lon1)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	θ := math.Atan2(y, x)

	return Mod(toDegrees(θ), 360)
}

// DistanceKm returns the great-circle distance between two points in
// kilometers, using the haversine formula. The result is non-negative and
// symmetric in its arguments.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := toRadians(lat1)
	φ2 := toRadians(lat2)
	Δφ := toRadians(lat2 - lat1)
	Δλ := toRadians(lon2 - lon1)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// TrueNorth corrects a magnetic heading to true north by applying the
// declination, when one is known. The result is normalized to [0, 360).
func TrueNorth(magneticHeading float64, declination *float64) float64 {
	if declination != nil {
		return Mod(magneticHeading+*declination, 360)
	}
	return Mod(magneticHeading, 360)
}

// ShortestAngle returns the shortest angular distance between two headings,
// in [0, 180].
func ShortestAngle(a, b float64) float64 {
	direct := math.Abs(Mod(a, 360) - Mod(b, 360))
	return math.Min(direct, 360-direct)
}

// AnimationTarget decides how a displayed heading should move toward a new
// sample. When current is NaN (nothing displayed yet) or the shortest
// angular distance between the two headings is below snapThreshold, the
// display should snap and target equals next. Otherwise target is next
// adjusted by ±360 so that a linear sweep from current to target follows
// the shorter arc, which may cross 0/360.
func AnimationTarget(current, next, snapThreshold float64) (target float64, snap bool) {
	if math.IsNaN(current) {
		return next, true
	}

	direct := math.Abs(next - current)
	reverse := 360 - direct
	if math.Min(direct, reverse) < snapThreshold {
		return next, true
	}

	switch {
	case direct <= reverse:
		return next, false
	case next < current:
		return next + 360, false
	default:
		return next - 360, false
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
