// Package chart draws the trend chart as a PNG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/view"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400

	lineWidth = 2.0
	dotWidth  = 4.0
)

var fillOpacity = 0.1

var ErrNothingToDraw = errors.New("no visible data to draw")

type Renderer struct {
	width  int
	height int
	title  string
}

func NewRenderer(opts ...RendererOpt) *Renderer {
	r := &Renderer{
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes c as a PNG. Hidden datasets and null samples are skipped.
func (r *Renderer) Render(w io.Writer, c view.Chart) error {
	var lines []gochart.Series
	for _, ds := range c.Datasets {
		if ds.Hidden {
			continue
		}
		s, err := lineSeries(c.Labels, ds)
		if err != nil {
			return fmt.Errorf("dataset %q: %w", ds.Label, err)
		}
		if s.Len() == 0 {
			continue
		}
		lines = append(lines, s)
	}
	if len(lines) == 0 {
		return ErrNothingToDraw
	}

	ticks := make([]gochart.Tick, len(c.Labels))
	for i, year := range c.Labels {
		ticks[i] = gochart.Tick{Value: float64(year), Label: strconv.Itoa(year)}
	}
	ticks = sparseTicks(ticks, 10)
	if len(ticks) == 1 {
		// A single year still needs a non-empty x range.
		only := ticks[0]
		ticks = []gochart.Tick{{Value: only.Value - 1}, only, {Value: only.Value + 1}}
	}

	ch := gochart.Chart{
		Title:      r.title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 12, Bottom: 12}},
		XAxis: gochart.XAxis{
			Name:  view.XAxisTitle,
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  view.YAxisTitle,
			Range: flatRange(c.Datasets),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: lines,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func lineSeries(labels []int, ds view.Dataset) (gochart.ContinuousSeries, error) {
	stroke, err := ParseColor(ds.BorderColor)
	if err != nil {
		return gochart.ContinuousSeries{}, err
	}

	var dots []drawing.Color
	s := gochart.ContinuousSeries{
		Name: ds.Label,
		Style: gochart.Style{
			StrokeColor: stroke,
			StrokeWidth: lineWidth,
			DotWidth:    dotWidth,
		},
	}
	if ds.Fill {
		s.Style.FillColor = stroke.WithAlpha(uint8(math.Round(fillOpacity * 255)))
	}

	for i, sample := range ds.Data {
		if !sample.Valid || i >= len(labels) {
			continue
		}
		s.XValues = append(s.XValues, float64(labels[i]))
		s.YValues = append(s.YValues, sample.Value)

		dot := stroke
		if i < len(ds.PointColors) {
			if dot, err = ParseColor(ds.PointColors[i]); err != nil {
				return gochart.ContinuousSeries{}, err
			}
		}
		dots = append(dots, dot)
	}

	s.Style.DotColorProvider = func(_, _ gochart.Range, index int, _, _ float64) drawing.Color {
		if index < len(dots) {
			return dots[index]
		}
		return stroke
	}
	return s, nil
}

// flatRange pads the y axis when every visible point has the same value.
// Otherwise it returns nil and go-chart fits the range to the data.
func flatRange(datasets []view.Dataset) gochart.Range {
	var lo, hi float64
	found := false
	for _, ds := range datasets {
		if ds.Hidden {
			continue
		}
		min, max, ok := series.Range(ds.Data)
		if !ok {
			continue
		}
		if !found {
			lo, hi, found = min, max, true
			continue
		}
		lo = math.Min(lo, min)
		hi = math.Max(hi, max)
	}
	if !found || lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// sparseTicks keeps at most max ticks, always including the last one.
func sparseTicks(ticks []gochart.Tick, max int) []gochart.Tick {
	if len(ticks) <= max {
		return ticks
	}
	step := (len(ticks) + max - 1) / max
	var out []gochart.Tick
	for i := 0; i < len(ticks); i += step {
		out = append(out, ticks[i])
	}
	if last := ticks[len(ticks)-1]; out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// ParseColor accepts "#rrggbb" and "rgba(r, g, b, a)" colors.
func ParseColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return drawing.Color{}, fmt.Errorf("parsing color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return drawing.Color{R: r, G: g, B: b, A: 255}, nil
	}

	var r, g, b uint8
	var a float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
		return drawing.Color{}, fmt.Errorf("parsing color %q: %w", s, err)
	}
	if a < 0 || a > 1 {
		return drawing.Color{}, fmt.Errorf("parsing color %q: alpha out of range", s)
	}
	return drawing.Color{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}, nil
}
