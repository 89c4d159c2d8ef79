package yeardata

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

const unknownFeature = "unknown"

// Schema names the feature properties that carry the identifier, display name and
// indicator value. The same names are used for every year.
type Schema struct {
	IDProperty        string
	NameProperty      string
	IndicatorProperty string
}

// DefaultSchema matches the Eurostat country boundaries joined with prevalence data.
var DefaultSchema = Schema{
	IDProperty:        "NAME_ENGL",
	NameProperty:      "NAME_ENGL",
	IndicatorProperty: "Anxiety",
}

// ID returns the stable identifier of a feature. The id property is the one the
// map source promotes, so it wins; the GeoJSON id is used only when the property
// is absent. Features with neither are "unknown".
func (s Schema) ID(f *geojson.Feature) string {
	if f == nil {
		return unknownFeature
	}
	if id := idString(f.Properties[s.IDProperty]); id != "" {
		return id
	}
	if id := idString(f.ID); id != "" {
		return id
	}
	return unknownFeature
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// Name returns the display name of a feature, or "" when it has none.
func (s Schema) Name(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	v, _ := f.Properties[s.NameProperty].(string)
	return v
}

// Indicator returns the indicator value of a feature. Absent and non-numeric
// values are reported as undefined.
func (s Schema) Indicator(f *geojson.Feature) (float64, bool) {
	if f == nil {
		return 0, false
	}
	switch v := f.Properties[s.IndicatorProperty].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
