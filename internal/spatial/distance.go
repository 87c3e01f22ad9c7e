package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// CoordinateSystem declares how Point coordinates are interpreted.
type CoordinateSystem string

const (
	// Projected means planar campus coordinates in meters.
	Projected CoordinateSystem = "projected"
	// WGS84 means X is longitude and Y is latitude, in degrees.
	WGS84 CoordinateSystem = "wgs84"
)

// Point is a location in the configured coordinate system.
type Point struct {
	X float64
	Y float64
}

// Euclidean calculates the straight-line distance between two planar points.
func Euclidean(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// HaversineDistance calculates the great-circle distance between two points
// in meters using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance returns the direct distance between two points in meters,
// using the formula appropriate for the coordinate system.
func Distance(cs CoordinateSystem, a, b Point) float64 {
	if cs == WGS84 {
		return HaversineDistance(a.Y, a.X, b.Y, b.X)
	}
	return Euclidean(a, b)
}
