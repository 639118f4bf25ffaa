// Package geodesy provides the spherical-earth math used to place terrace
// estimates: forward azimuth between two points and the direct geodesic
// (destination from origin, bearing and distance).
package geodesy

import (
	"math"

	"github.com/sunspotter/sunspotter/internal/models"
)

// EarthRadiusMeters is the mean earth radius used for all spherical formulas.
const EarthRadiusMeters = 6371000.0

// Bearing returns the forward azimuth in radians from `from` toward `to`
// along a great circle. Coincident points yield a bearing of 0 (due north);
// callers must accept this as defined behavior.
func Bearing(from, to models.GeoPoint) float64 {
	φ1 := from.Latitude * math.Pi / 180
	φ2 := to.Latitude * math.Pi / 180
	Δλ := (to.Longitude - from.Longitude) * math.Pi / 180

	x := math.Sin(Δλ) * math.Cos(φ2)
	y := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)

	return math.Atan2(x, y)
}

// Destination solves the direct geodesic on a sphere: the point reached by
// travelling distanceMeters from origin along bearingRad.
func Destination(origin models.GeoPoint, bearingRad, distanceMeters float64) models.GeoPoint {
	φ1 := origin.Latitude * math.Pi / 180
	λ1 := origin.Longitude * math.Pi / 180
	d := distanceMeters / EarthRadiusMeters

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(d) + math.Cos(φ1)*math.Sin(d)*math.Cos(bearingRad))
	λ2 := λ1 + math.Atan2(
		math.Sin(bearingRad)*math.Sin(d)*math.Cos(φ1),
		math.Cos(d)-math.Sin(φ1)*math.Sin(φ2),
	)

	return models.GeoPoint{
		Latitude:  φ2 * 180 / math.Pi,
		Longitude: λ2 * 180 / math.Pi,
	}
}

// Distance returns the great-circle distance between two points in meters
// using the Haversine formula.
func Distance(p1, p2 models.GeoPoint) float64 {
	φ1 := p1.Latitude * math.Pi / 180
	φ2 := p2.Latitude * math.Pi / 180
	Δφ := (p2.Latitude - p1.Latitude) * math.Pi / 180
	Δλ := (p2.Longitude - p1.Longitude) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
