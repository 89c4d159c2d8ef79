package yeardata

import (
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Store holds one feature collection per loaded year. It is read-only once built.
type Store struct {
	schema Schema
	years  []int
	data   map[int]*geojson.FeatureCollection
}

// NewStore builds a Store from the given collections. Nil and empty collections are
// dropped so every year in Years() has at least one feature.
func NewStore(schema Schema, data map[int]*geojson.FeatureCollection) *Store {
	s := &Store{
		schema: schema,
		data:   make(map[int]*geojson.FeatureCollection, len(data)),
	}

	for year, fc := range data {
		if fc == nil || len(fc.Features) == 0 {
			continue
		}
		s.data[year] = fc
		s.years = append(s.years, year)
	}
	slices.Sort(s.years)

	return s
}

// Schema returns the property names used to read features.
func (s *Store) Schema() Schema {
	return s.schema
}

// Years returns the ascending loaded-years sequence.
func (s *Store) Years() []int {
	return slices.Clone(s.years)
}

// Len returns the number of loaded years.
func (s *Store) Len() int {
	return len(s.years)
}

// Get returns the feature collection for year.
func (s *Store) Get(year int) (*geojson.FeatureCollection, bool) {
	fc, ok := s.data[year]
	return fc, ok
}

// FeatureByID returns the first feature of year with the given identifier.
func (s *Store) FeatureByID(year int, id string) (*geojson.Feature, bool) {
	fc, ok := s.data[year]
	if !ok {
		return nil, false
	}
	for _, f := range fc.Features {
		if s.schema.ID(f) == id {
			return f, true
		}
	}
	return nil, false
}

// FeatureByName returns the first feature of year whose display name matches name,
// ignoring case.
func (s *Store) FeatureByName(year int, name string) (*geojson.Feature, bool) {
	fc, ok := s.data[year]
	if !ok {
		return nil, false
	}
	for _, f := range fc.Features {
		if strings.EqualFold(s.schema.Name(f), name) {
			return f, true
		}
	}
	return nil, false
}

// FeatureAt returns the first feature of year whose polygon contains pt.
func (s *Store) FeatureAt(year int, pt orb.Point) (*geojson.Feature, bool) {
	fc, ok := s.data[year]
	if !ok {
		return nil, false
	}
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.Bound().Contains(pt) {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return f, true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return f, true
			}
		}
	}
	return nil, false
}

// Names returns the sorted, de-duplicated display names across all loaded years.
func (s *Store) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, year := range s.years {
		for _, f := range s.data[year].Features {
			n := s.schema.Name(f)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}
