package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/foodking/internal/domain/validation"
)

// kmPerDegree is the length of one degree of latitude along a meridian.
const kmPerDegree = EarthRadiusKm * math.Pi / 180

func TestDistance_OneDegreeAlongMeridian(t *testing.T) {
	assert.Equal(t, 111.19, Distance(Coordinate{0, 0}, Coordinate{1, 0}))
}

func TestDistance_SymmetricAndZero(t *testing.T) {
	points := []Coordinate{
		{0, 0},
		{17.385, 78.4867},
		{17.4065, 78.4772},
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
		{89.9, 179.9},
		{-89.9, -179.9},
	}

	for _, a := range points {
		assert.Zero(t, Distance(a, a), "distance of %v to itself", a)
		for _, b := range points {
			assert.Equal(t, Distance(a, b), Distance(b, a), "d(%v,%v) != d(%v,%v)", a, b, b, a)
		}
	}
}

func TestDistance_KnownCity(t *testing.T) {
	// Hyderabad center to a point ~2.6 km north-west.
	d := Distance(Coordinate{17.385, 78.4867}, Coordinate{17.4065, 78.4772})
	assert.InDelta(t, 2.60, d, 0.05)
	assert.Equal(t, d, math.Round(d*100)/100, "distance must be rounded to 2 decimals")
}

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name      string
		c         Coordinate
		wantField string
	}{
		{name: "origin", c: Coordinate{0, 0}},
		{name: "corners", c: Coordinate{90, -180}},
		{name: "lat too high", c: Coordinate{90.01, 0}, wantField: "location.lat"},
		{name: "lat too low", c: Coordinate{-91, 0}, wantField: "location.lat"},
		{name: "lng too high", c: Coordinate{0, 180.5}, wantField: "location.lng"},
		{name: "nan", c: Coordinate{math.NaN(), 0}, wantField: "location.lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var vErr *validation.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}
