package yeardata

import (
	"fmt"
	"strings"
)

type testCountry struct {
	name  string
	value any // nil omits the indicator property
	lon   float64
	lat   float64
}

// featureCollectionJSON builds a collection of 1x1 degree squares anchored at each
// country's lon/lat.
func featureCollectionJSON(countries ...testCountry) string {
	features := make([]string, 0, len(countries))
	for _, c := range countries {
		props := fmt.Sprintf(`"NAME_ENGL": %q`, c.name)
		if c.value != nil {
			props += fmt.Sprintf(`, "Anxiety": %v`, c.value)
		}
		ring := fmt.Sprintf(`[[%[1]v,%[2]v],[%[3]v,%[2]v],[%[3]v,%[4]v],[%[1]v,%[4]v],[%[1]v,%[2]v]]`,
			c.lon, c.lat, c.lon+1, c.lat+1)
		features = append(features, fmt.Sprintf(
			`{"type":"Feature","properties":{%s},"geometry":{"type":"Polygon","coordinates":[%s]}}`,
			props, ring))
	}
	return fmt.Sprintf(`{"type":"FeatureCollection","features":[%s]}`, strings.Join(features, ","))
}
