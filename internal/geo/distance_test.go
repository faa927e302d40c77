package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"compsight/server/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestDistanceMiles(t *testing.T) {
	// Boston to New York, roughly 190 miles.
	d := DistanceMiles(42.3601, -71.0589, 40.7128, -74.0060)
	assert.InDelta(t, 190, d, 5)

	// Same point.
	assert.Equal(t, 0.0, DistanceMiles(42.3601, -71.0589, 42.3601, -71.0589))
}

func TestPropertyDistanceMiles(t *testing.T) {
	a := models.Property{Latitude: floatPtr(42.3601), Longitude: floatPtr(-71.0589)}
	b := models.Property{Latitude: floatPtr(42.3736), Longitude: floatPtr(-71.1097)}

	d := PropertyDistanceMiles(&a, &b)
	assert.NotNil(t, d)
	// Boston to Cambridge, about 2.7 miles.
	assert.InDelta(t, 2.7, *d, 0.5)

	// Missing coordinates on either side yield nil.
	c := models.Property{}
	assert.Nil(t, PropertyDistanceMiles(&a, &c))
	assert.Nil(t, PropertyDistanceMiles(&c, &b))
}
