// Package geo holds the coordinate types and the great-circle distance math
// used by proximity search.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used by the haversine distance.
const EarthRadiusMiles = 3959.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchLocation is a resolved search center plus the caller-selected radius.
type SearchLocation struct {
	Point
	RadiusMiles float64 `json:"radiusMiles"`
}

// AllowedRadii enumerates the radius values the search API accepts. Any
// other value is rejected, never clamped.
var AllowedRadii = []float64{25, 50, 75, 100}

// ValidRadius reports whether r is one of the allowed search radii.
func ValidRadius(r float64) bool {
	for _, allowed := range AllowedRadii {
		if r == allowed {
			return true
		}
	}
	return false
}

// Distance returns the haversine great-circle distance between two points in
// miles. NaN coordinates propagate to a NaN distance.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}
