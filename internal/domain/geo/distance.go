// Package geo implements great-circle distance and the delivery radius check.
package geo

import (
	"math"

	"github.com/xenking/foodking/internal/domain/validation"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Coordinate is a point in geographic degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Validate reports coordinates outside [-90,90] x [-180,180] or NaN.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return validation.New("location.lat", "must be between -90 and 90")
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return validation.New("location.lng", "must be between -180 and 180")
	}
	return nil
}

// Distance returns the haversine distance between a and b in kilometers,
// rounded to 2 decimal places.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(EarthRadiusKm*c*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
