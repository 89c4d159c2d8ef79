package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/view"
	"github.com/pixil98/go-testutil"
)

func testChart(countrySelected bool) view.Chart {
	labels := []int{1990, 1991, 1992, 1993}
	return view.Chart{
		Labels: labels,
		Datasets: []view.Dataset{
			{
				Label:       view.MeanLabel,
				Data:        series.FromValues([]float64{35, 36.5, 37, 36}),
				BorderColor: view.MeanColor,
				Fill:        true,
				Hidden:      countrySelected,
				PointColors: []string{view.MutedPointColor, view.MeanColor, view.MutedPointColor, view.MutedPointColor},
			},
			{
				Label:       "France",
				Data:        []series.Sample{series.Some(40), {}, series.Some(44), series.Some(43)},
				BorderColor: view.CountryColor,
				Hidden:      !countrySelected,
				PointColors: []string{view.MutedPointColor, view.CountryColor, view.MutedPointColor, view.MutedPointColor},
			},
		},
		CurrentIndex: 1,
	}
}

func TestRenderer_Render(t *testing.T) {
	tests := map[string]struct {
		chart  view.Chart
		expErr error
	}{
		"mean": {
			chart: testChart(false),
		},
		"country with gaps": {
			chart: testChart(true),
		},
		"one year": {
			chart: view.Chart{
				Labels: []int{2005},
				Datasets: []view.Dataset{{
					Label:       view.MeanLabel,
					Data:        series.FromValues([]float64{38.2}),
					BorderColor: view.MeanColor,
					Fill:        true,
					PointColors: []string{view.MeanColor},
				}},
			},
		},
		"flat series": {
			chart: func() view.Chart {
				c := testChart(false)
				c.Datasets[0].Data = series.FromValues([]float64{0, 0, 0, 0})
				return c
			}(),
		},
		"country without values": {
			chart: func() view.Chart {
				c := testChart(true)
				c.Datasets[1].Data = []series.Sample{{}, {}, {}, {}}
				return c
			}(),
			expErr: ErrNothingToDraw,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewRenderer(WithSize(400, 200), WithTitle("Trend")).Render(&buf, tt.chart)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("output is not a png: %v", err)
			}
			testutil.AssertEqual(t, "width", img.Bounds().Dx(), 400)
			testutil.AssertEqual(t, "height", img.Bounds().Dy(), 200)
		})
	}
}

func TestLineSeries_SkipsNulls(t *testing.T) {
	c := testChart(true)
	s, err := lineSeries(c.Labels, c.Datasets[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "points", s.Len(), 3)
	x, y := s.GetValues(1)
	testutil.AssertEqual(t, "x", x, 1992.0)
	testutil.AssertEqual(t, "y", y, 44.0)

	muted, _ := ParseColor(view.MutedPointColor)
	testutil.AssertEqual(t, "dot 0", s.Style.DotColorProvider(nil, nil, 0, 0, 0), muted)
	testutil.AssertEqual(t, "dot 1", s.Style.DotColorProvider(nil, nil, 1, 0, 0), muted)
}

func TestParseColor(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    drawing.Color
		expErr string
	}{
		"hex": {
			in:  "#ff7f00",
			exp: drawing.Color{R: 255, G: 127, B: 0, A: 255},
		},
		"rgba": {
			in:  "rgba(0, 0, 0, 0.1)",
			exp: drawing.Color{R: 0, G: 0, B: 0, A: 26},
		},
		"rgba opaque": {
			in:  "rgba(122,1,119,1)",
			exp: drawing.Color{R: 122, G: 1, B: 119, A: 255},
		},
		"bad hex": {
			in:     "#zzzzzz",
			expErr: "parsing color",
		},
		"named": {
			in:     "orange",
			expErr: "parsing color",
		},
		"alpha out of range": {
			in:     "rgba(0,0,0,2)",
			expErr: "alpha out of range",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "color", got, tt.exp)
		})
	}
}

func TestFlatRange(t *testing.T) {
	tests := map[string]struct {
		datasets []view.Dataset
		exp      gochart.Range
	}{
		"varying": {
			datasets: []view.Dataset{{Data: series.FromValues([]float64{35, 36})}},
		},
		"flat": {
			datasets: []view.Dataset{{Data: series.FromValues([]float64{40, 40})}},
			exp:      &gochart.ContinuousRange{Min: 39, Max: 41},
		},
		"single point": {
			datasets: []view.Dataset{{Data: []series.Sample{{}, series.Some(0)}}},
			exp:      &gochart.ContinuousRange{Min: -1, Max: 1},
		},
		"hidden dataset ignored": {
			datasets: []view.Dataset{
				{Data: series.FromValues([]float64{10, 90}), Hidden: true},
				{Data: series.FromValues([]float64{40})},
			},
			exp: &gochart.ContinuousRange{Min: 39, Max: 41},
		},
		"flat across datasets differs": {
			datasets: []view.Dataset{
				{Data: series.FromValues([]float64{40})},
				{Data: series.FromValues([]float64{41})},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "range", flatRange(tt.datasets), tt.exp)
		})
	}
}

func TestSparseTicks(t *testing.T) {
	var ticks []gochart.Tick
	for year := 1990; year <= 2019; year++ {
		ticks = append(ticks, gochart.Tick{Value: float64(year)})
	}

	got := sparseTicks(ticks, 10)
	testutil.AssertEqual(t, "first", got[0].Value, 1990.0)
	testutil.AssertEqual(t, "last", got[len(got)-1].Value, 2019.0)
	if len(got) > 11 {
		t.Errorf("expected at most 11 ticks, got %d", len(got))
	}

	testutil.AssertEqual(t, "short untouched", len(sparseTicks(ticks[:5], 10)), 5)
}
