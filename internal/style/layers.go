package style

import (
	"github.com/paulmach/orb/geojson"
)

const (
	SourceID         = "current-data"
	FillLayerID      = "data-fill"
	ExtrusionLayerID = "data-extrusion"
	ExtrusionFactor  = 5000
	OutlineColor     = "#000"
)

// Source is a GeoJSON map source whose feature ids come from PromoteID.
type Source struct {
	Type      string                     `json:"type"`
	Data      *geojson.FeatureCollection `json:"data"`
	PromoteID string                     `json:"promoteId"`
}

type Layer struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Paint  map[string]any `json:"paint"`
}

// Document is the full set of sources and layers a map renderer needs.
type Document struct {
	Sources map[string]Source `json:"sources"`
	Layers  []Layer           `json:"layers"`
}

// Options controls how the layers are painted.
type Options struct {
	Scale     Scale
	Property  string
	PromoteID string

	// Show3D switches every extrusion off when false.
	Show3D bool
	// Touched is false until the first feature toggle. Until then every
	// feature is extruded.
	Touched  bool
	Extruded []string
}

// Build returns the map document for fc.
func Build(fc *geojson.FeatureCollection, opts Options) Document {
	color := opts.Scale.Expression(opts.Property)

	height, opacity := extrusion(opts)

	return Document{
		Sources: map[string]Source{
			SourceID: {
				Type:      "geojson",
				Data:      fc,
				PromoteID: opts.PromoteID,
			},
		},
		Layers: []Layer{
			{
				ID:     FillLayerID,
				Type:   "fill",
				Source: SourceID,
				Paint: map[string]any{
					"fill-color":         color,
					"fill-opacity":       1,
					"fill-outline-color": OutlineColor,
				},
			},
			{
				ID:     ExtrusionLayerID,
				Type:   "fill-extrusion",
				Source: SourceID,
				Paint: map[string]any{
					"fill-extrusion-color":             color,
					"fill-extrusion-opacity":           opacity,
					"fill-extrusion-height":            height,
					"fill-extrusion-base":              0,
					"fill-extrusion-translate":         []int{0, 0},
					"fill-extrusion-translate-anchor":  "map",
					"fill-extrusion-vertical-gradient": true,
				},
			},
		},
	}
}

// HeightExpression scales property by ExtrusionFactor.
func HeightExpression(property string) []any {
	return []any{"*", []any{"coalesce", []any{"get", property}, 0}, ExtrusionFactor}
}

func extrusion(opts Options) (height any, opacity int) {
	switch {
	case !opts.Show3D:
		return 0, 0
	case !opts.Touched:
		return HeightExpression(opts.Property), 1
	case len(opts.Extruded) == 0:
		return 0, 0
	}

	ids := make([]any, len(opts.Extruded))
	for i, id := range opts.Extruded {
		ids[i] = id
	}
	return []any{"match", []any{"id"}, ids, HeightExpression(opts.Property), 0}, 1
}
