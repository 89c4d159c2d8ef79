// Package style describes how the map paints the indicator.
package style

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Stop switches the scale to Color for values at or above Min.
type Stop struct {
	Min   float64
	Color colorful.Color
}

// Scale is a step color scale. Values below the first stop use Base.
type Scale struct {
	Base  colorful.Color
	Stops []Stop
}

// DefaultScale is the five-class prevalence scale.
var DefaultScale = MustScale("#fef0d9",
	32, "#fdcc8a",
	43, "#fc8d59",
	54, "#e34a33",
	65, "#b30000",
)

// NewScale parses a base color followed by (threshold, color) pairs in ascending order.
func NewScale(base string, stops ...any) (Scale, error) {
	b, err := colorful.Hex(base)
	if err != nil {
		return Scale{}, fmt.Errorf("parsing base color %q: %w", base, err)
	}
	if len(stops)%2 != 0 {
		return Scale{}, fmt.Errorf("stops must be threshold/color pairs")
	}

	s := Scale{Base: b}
	for i := 0; i < len(stops); i += 2 {
		var min float64
		switch v := stops[i].(type) {
		case int:
			min = float64(v)
		case float64:
			min = v
		default:
			return Scale{}, fmt.Errorf("threshold %d: unsupported type %T", i/2, stops[i])
		}
		if n := len(s.Stops); n > 0 && min <= s.Stops[n-1].Min {
			return Scale{}, fmt.Errorf("threshold %v is not ascending", min)
		}

		hex, ok := stops[i+1].(string)
		if !ok {
			return Scale{}, fmt.Errorf("color %d: unsupported type %T", i/2, stops[i+1])
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return Scale{}, fmt.Errorf("parsing color %q: %w", hex, err)
		}

		s.Stops = append(s.Stops, Stop{Min: min, Color: c})
	}
	return s, nil
}

func MustScale(base string, stops ...any) Scale {
	s, err := NewScale(base, stops...)
	if err != nil {
		panic(err)
	}
	return s
}

// Color returns the color for v.
func (s Scale) Color(v float64) colorful.Color {
	c := s.Base
	for _, stop := range s.Stops {
		if v < stop.Min {
			break
		}
		c = stop.Color
	}
	return c
}

// Expression renders the scale as a step expression over property, treating a
// missing value as 0.
func (s Scale) Expression(property string) []any {
	expr := []any{"step", []any{"coalesce", []any{"get", property}, 0}, s.Base.Hex()}
	for _, stop := range s.Stops {
		expr = append(expr, stop.Min, stop.Color.Hex())
	}
	return expr
}
