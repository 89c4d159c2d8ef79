// Package series computes the per-year trend series shown in the chart.
package series

import (
	"encoding/json"
	"strings"

	"github.com/pixil98/go-atlas/internal/yeardata"
)

// Sample is a nullable indicator value.
type Sample struct {
	Value float64
	Valid bool
}

// Some returns a valid sample.
func Some(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Sample) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Sample{}
		return nil
	}
	if err := json.Unmarshal(b, &s.Value); err != nil {
		return err
	}
	s.Valid = true
	return nil
}

// Mean returns, for each year, the mean indicator over the features that define it.
// A year where no feature defines the indicator, or that is not loaded, yields 0.
func Mean(store *yeardata.Store, years []int) []float64 {
	schema := store.Schema()
	means := make([]float64, len(years))

	for i, year := range years {
		fc, ok := store.Get(year)
		if !ok {
			continue
		}

		var sum float64
		var count int
		for _, f := range fc.Features {
			v, ok := schema.Indicator(f)
			if !ok {
				continue
			}
			sum += v
			count++
		}

		if count > 0 {
			means[i] = sum / float64(count)
		}
	}

	return means
}

// Country returns, for each year, the indicator of the first feature whose display
// name is name. Years without a matching feature, or whose feature has no value,
// yield an invalid sample.
func Country(store *yeardata.Store, years []int, name string) []Sample {
	schema := store.Schema()
	samples := make([]Sample, len(years))

	for i, year := range years {
		fc, ok := store.Get(year)
		if !ok {
			continue
		}

		for _, f := range fc.Features {
			if schema.Name(f) != name {
				continue
			}
			if v, ok := schema.Indicator(f); ok {
				samples[i] = Some(v)
			}
			break
		}
	}

	return samples
}

// Range returns the min and max of the valid samples. ok is false when none are valid.
func Range(samples []Sample) (min, max float64, ok bool) {
	for _, s := range samples {
		if !s.Valid {
			continue
		}
		if !ok {
			min, max, ok = s.Value, s.Value, true
			continue
		}
		if s.Value < min {
			min = s.Value
		}
		if s.Value > max {
			max = s.Value
		}
	}
	return min, max, ok
}

// FromValues wraps plain values as valid samples.
func FromValues(values []float64) []Sample {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Some(v)
	}
	return samples
}

// Label returns the dataset label for a country series.
func Label(country string) string {
	if strings.TrimSpace(country) == "" {
		return "Selected Country"
	}
	return country
}
