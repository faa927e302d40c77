package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"compsight/server/internal/models"
)

const metersPerMile = 1609.344

// DistanceMiles returns the great-circle distance between two lat/lon points
// in miles.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	d := orbgeo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
	return d / metersPerMile
}

// PropertyDistanceMiles returns the distance between two properties, or nil
// when either side is missing coordinates.
func PropertyDistanceMiles(a, b *models.Property) *float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return nil
	}
	d := DistanceMiles(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	return &d
}
