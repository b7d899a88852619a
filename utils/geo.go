package utils

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

var ErrInvalidCoordinates = errors.New("coordinates must be finite numbers")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return isFinite(p.Latitude) && isFinite(p.Longitude)
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
func DistanceKm(a, b Point) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, ErrInvalidCoordinates
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
