package domain

import "math"

const earthRadiusMeters = 6371000.0

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether the coordinates fall inside WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// HaversineMeters returns the great-circle distance between two points.
// Used by the walking fallback when a transit provider refuses to route
// two points that are very near each other.
func HaversineMeters(a, b Coordinates) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
