package command

import (
	"fmt"
	"net"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-atlas/internal/chart"
	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/style"
	"github.com/pixil98/go-atlas/internal/view"
	"github.com/pixil98/go-atlas/internal/web"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

type WebConfig struct {
	Addr        string `json:"addr"`
	StaticDir   string `json:"static_dir,omitempty"`
	ChartWidth  int    `json:"chart_width,omitempty"`
	ChartHeight int    `json:"chart_height,omitempty"`
	ChartTitle  string `json:"chart_title,omitempty"`
	// Scale replaces the default color classes when set.
	Scale *ScaleConfig `json:"scale,omitempty"`
}

type ScaleConfig struct {
	Base  string            `json:"base"`
	Stops []ScaleStopConfig `json:"stops"`
}

type ScaleStopConfig struct {
	Min   float64 `json:"min"`
	Color string  `json:"color"`
}

func (c *ScaleConfig) build() (style.Scale, error) {
	stops := make([]any, 0, 2*len(c.Stops))
	for _, stop := range c.Stops {
		stops = append(stops, stop.Min, stop.Color)
	}
	return style.NewScale(c.Base, stops...)
}

func (c *WebConfig) validate() error {
	el := errors.NewErrorList()

	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		el.Add(fmt.Errorf("parsing web addr: %w", err))
	}
	if c.StaticDir != "" {
		if fi, err := os.Stat(c.StaticDir); err != nil {
			el.Add(fmt.Errorf("static_dir: %w", err))
		} else if !fi.IsDir() {
			el.Add(fmt.Errorf("static_dir %q is not a directory", c.StaticDir))
		}
	}
	if c.ChartWidth < 0 || c.ChartHeight < 0 {
		el.Add(fmt.Errorf("chart size cannot be negative"))
	}
	if c.Scale != nil {
		if _, err := c.Scale.build(); err != nil {
			el.Add(fmt.Errorf("scale: %w", err))
		}
	}

	return el.Err()
}

func (c *WebConfig) buildWebTarget(controls commands.Controls, banner *view.Banner, exec web.Executor, schema yeardata.Schema) (*web.WebTarget, error) {
	var chartOpts []chart.RendererOpt
	if c.ChartWidth > 0 && c.ChartHeight > 0 {
		chartOpts = append(chartOpts, chart.WithSize(c.ChartWidth, c.ChartHeight))
	}
	if c.ChartTitle != "" {
		chartOpts = append(chartOpts, chart.WithTitle(c.ChartTitle))
	}

	opts := []web.WebOpt{
		web.WithExecutor(exec),
		web.WithSchema(schema),
		web.WithRenderer(chart.NewRenderer(chartOpts...)),
	}
	if c.StaticDir != "" {
		opts = append(opts, web.WithWebDir(c.StaticDir))
	}
	if c.Scale != nil {
		scale, err := c.Scale.build()
		if err != nil {
			return nil, fmt.Errorf("building scale: %w", err)
		}
		opts = append(opts, web.WithScale(scale))
	}

	return web.NewWebTarget(c.Addr, controls, banner, opts...), nil
}
