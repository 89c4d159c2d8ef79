package style

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-testutil"
)

func TestScale_Color(t *testing.T) {
	tests := map[string]struct {
		value float64
		exp   string
	}{
		"zero":             {value: 0, exp: "#fef0d9"},
		"just below first": {value: 31.99, exp: "#fef0d9"},
		"first threshold":  {value: 32, exp: "#fdcc8a"},
		"second class":     {value: 50, exp: "#fc8d59"},
		"fourth class":     {value: 64.9, exp: "#e34a33"},
		"top threshold":    {value: 65, exp: "#b30000"},
		"far above":        {value: 1000, exp: "#b30000"},
		"negative":         {value: -5, exp: "#fef0d9"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "color", DefaultScale.Color(tt.value).Hex(), tt.exp)
		})
	}
}

func TestNewScale(t *testing.T) {
	tests := map[string]struct {
		base   string
		stops  []any
		expErr string
	}{
		"valid": {
			base:  "#000000",
			stops: []any{1, "#ffffff", 2.5, "#ff0000"},
		},
		"bad base": {
			base:   "black",
			expErr: "parsing base color",
		},
		"odd stops": {
			base:   "#000000",
			stops:  []any{1},
			expErr: "threshold/color pairs",
		},
		"descending": {
			base:   "#000000",
			stops:  []any{5, "#ffffff", 2, "#ff0000"},
			expErr: "not ascending",
		},
		"bad threshold type": {
			base:   "#000000",
			stops:  []any{"5", "#ffffff"},
			expErr: "unsupported type",
		},
		"bad color": {
			base:   "#000000",
			stops:  []any{5, "white"},
			expErr: "parsing color",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := NewScale(tt.base, tt.stops...)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "stops", len(s.Stops), len(tt.stops)/2)
		})
	}
}

func TestScale_Expression(t *testing.T) {
	b, err := json.Marshal(DefaultScale.Expression("Anxiety"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := `["step",["coalesce",["get","Anxiety"],0],"#fef0d9",32,"#fdcc8a",43,"#fc8d59",54,"#e34a33",65,"#b30000"]`
	testutil.AssertEqual(t, "expression", string(b), exp)
}

func TestBuild(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	heightAll := `["*",["coalesce",["get","Anxiety"],0],5000]`

	tests := map[string]struct {
		opts       Options
		expHeight  string
		expOpacity string
	}{
		"3d off": {
			opts:       Options{Show3D: false},
			expHeight:  `0`,
			expOpacity: `0`,
		},
		"untouched extrudes everything": {
			opts:       Options{Show3D: true},
			expHeight:  heightAll,
			expOpacity: `1`,
		},
		"touched with nothing extruded": {
			opts:       Options{Show3D: true, Touched: true, Extruded: []string{}},
			expHeight:  `0`,
			expOpacity: `0`,
		},
		"only extruded features": {
			opts:       Options{Show3D: true, Touched: true, Extruded: []string{"France", "Spain"}},
			expHeight:  `["match",["id"],["France","Spain"],` + heightAll + `,0]`,
			expOpacity: `1`,
		},
		"3d off wins over selection": {
			opts:       Options{Show3D: false, Touched: true, Extruded: []string{"France"}},
			expHeight:  `0`,
			expOpacity: `0`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tt.opts.Scale = DefaultScale
			tt.opts.Property = "Anxiety"
			tt.opts.PromoteID = "NAME_ENGL"

			doc := Build(fc, tt.opts)

			src, ok := doc.Sources[SourceID]
			testutil.AssertEqual(t, "source present", ok, true)
			testutil.AssertEqual(t, "promote id", src.PromoteID, "NAME_ENGL")

			var ids []string
			for _, l := range doc.Layers {
				ids = append(ids, l.ID)
				testutil.AssertEqual(t, l.ID+" source", l.Source, SourceID)
			}
			if diff := cmp.Diff([]string{FillLayerID, ExtrusionLayerID}, ids); diff != "" {
				t.Errorf("layer ids mismatch (-want +got):\n%s", diff)
			}

			paint := doc.Layers[1].Paint
			testutil.AssertEqual(t, "height", mustJSON(t, paint["fill-extrusion-height"]), tt.expHeight)
			testutil.AssertEqual(t, "opacity", mustJSON(t, paint["fill-extrusion-opacity"]), tt.expOpacity)
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return string(b)
}
