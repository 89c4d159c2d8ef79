package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-atlas/internal/playback"
)

const (
	yearOutput   = `{{ .Result.Playback.Year }}  {{ timeline .Result.Playback.Years .Result.Playback.Year }}`
	statusOutput = `Year:      {{ .Result.Playback.Year }}  {{ timeline .Result.Playback.Years .Result.Playback.Year }}
State:     {{ ternary "playing" "paused" .Result.Playback.Playing }} at {{ .Result.Playback.Speed }}x ({{ .Result.Playback.IntervalMS }}ms per year)
Selected:  {{ .Result.Selected | default "none" }}
Extruded:  {{ if .Result.Extruded }}{{ join ", " .Result.Extruded }}{{ else }}none{{ end }}
Mean:      {{ printf "%.2f" .Result.Mean }} cases per 1000 people
3D view:   {{ ternary "on" "off" .Result.Show3D }}
Stats:     {{ ternary "shown" "hidden" .Result.ShowStats }}{{ with .Result.Banner.Error }}
Error:     {{ . }}{{ end }}`
)

// statusAfter runs fn and reports the resulting status.
func statusAfter(fn func(Controls, context.Context) error) CommandFunc {
	return func(ctx context.Context, c Controls, _ *Input) (any, error) {
		if err := fn(c, ctx); err != nil {
			return nil, err
		}
		return c.Status(ctx)
	}
}

func builtins(h *Handler) []*Command {
	return []*Command{
		{
			Name:   "play",
			Help:   "Start the timeline animation.",
			Output: `Playing from {{ .Result.Playback.Year }} at {{ .Result.Playback.Speed }}x.`,
			Run:    statusAfter(Controls.Play),
		},
		{
			Name:   "pause",
			Help:   "Stop the timeline animation.",
			Output: `Paused at {{ .Result.Playback.Year }}.`,
			Run:    statusAfter(Controls.Pause),
		},
		{
			Name:   "toggle",
			Help:   "Play when paused, pause when playing.",
			Output: `{{ ternary "Playing" "Paused" .Result.Playback.Playing }} at {{ .Result.Playback.Year }}.`,
			Run:    statusAfter(Controls.TogglePlay),
		},
		{
			Name:   "next",
			Help:   "Show the next year.",
			Output: yearOutput,
			Run:    statusAfter(Controls.Next),
		},
		{
			Name:    "previous",
			Aliases: []string{"prev"},
			Help:    "Show the previous year.",
			Output:  yearOutput,
			Run:     statusAfter(Controls.Previous),
		},
		{
			Name:   "jump",
			Help:   "Show a specific year.",
			Inputs: []InputSpec{{Name: "year", Type: InputTypeNumber, Required: true}},
			Output: yearOutput,
			Run: func(ctx context.Context, c Controls, in *Input) (any, error) {
				return statusAfter(func(c Controls, ctx context.Context) error {
					return c.JumpTo(ctx, in.Int("year"))
				})(ctx, c, in)
			},
		},
		{
			Name:   "speed",
			Help:   fmt.Sprintf("Set the animation speed from %d to %d.", playback.MinSpeed, playback.MaxSpeed),
			Inputs: []InputSpec{{Name: "speed", Type: InputTypeNumber, Required: true}},
			Output: `Speed {{ .Result.Playback.Speed }}x ({{ .Result.Playback.IntervalMS }}ms per year).`,
			Run: func(ctx context.Context, c Controls, in *Input) (any, error) {
				speed := in.Int("speed")
				if speed < playback.MinSpeed || speed > playback.MaxSpeed {
					return nil, NewUserError(fmt.Sprintf("Speed must be between %d and %d.", playback.MinSpeed, playback.MaxSpeed))
				}
				return statusAfter(func(c Controls, ctx context.Context) error {
					return c.SetSpeed(ctx, speed)
				})(ctx, c, in)
			},
		},
		{
			Name:   "select",
			Help:   "Select a country and toggle its extrusion.",
			Inputs: []InputSpec{{Name: "country", Type: InputTypeString, Required: true, Rest: true}},
			Output: `{{ .Result.String }}`,
			Run: func(ctx context.Context, c Controls, in *Input) (any, error) {
				return c.Select(ctx, in.String("country"))
			},
		},
		{
			Name: "click",
			Help: "Select the country at a longitude and latitude.",
			Inputs: []InputSpec{
				{Name: "lon", Type: InputTypeFloat, Required: true},
				{Name: "lat", Type: InputTypeFloat, Required: true},
			},
			Output: `{{ .Result.String }}`,
			Run: func(ctx context.Context, c Controls, in *Input) (any, error) {
				return c.SelectAt(ctx, in.Float("lon"), in.Float("lat"))
			},
		},
		{
			Name:   "describe",
			Help:   "Show a country's value for the current year.",
			Inputs: []InputSpec{{Name: "country", Type: InputTypeString, Required: true, Rest: true}},
			Output: `{{ .Result.String }}`,
			Run: func(ctx context.Context, c Controls, in *Input) (any, error) {
				return c.Describe(ctx, in.String("country"))
			},
		},
		{
			Name:   "clear",
			Help:   "Clear the selected country. Extruded countries stay extruded.",
			Output: `Selection cleared.`,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return nil, c.ClearSelection(ctx)
			},
		},
		{
			Name:   "3d",
			Help:   "Switch the 3D extrusion on or off.",
			Output: `3D view {{ ternary "on" "off" .Result }}.`,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return c.Toggle3D(ctx)
			},
		},
		{
			Name:   "stats",
			Help:   "Show or hide the distribution chart.",
			Output: `Distribution {{ ternary "shown" "hidden" .Result }}.`,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return c.ToggleStats(ctx)
			},
		},
		{
			Name:   "status",
			Help:   "Show the current year, playback and selection.",
			Output: statusOutput,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return c.Status(ctx)
			},
		},
		{
			Name:   "years",
			Help:   "List the loaded years.",
			Output: `{{ len .Result.Playback.Years }} years loaded: {{ join ", " .Result.Playback.Years }}`,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return c.Status(ctx)
			},
		},
		{
			Name:   "trend",
			Help:   "Draw the series shown in the chart.",
			Output: `{{ .Result.TrendLabel }}: {{ sparkline .Result.Trend }}`,
			Run: func(ctx context.Context, c Controls, _ *Input) (any, error) {
				return c.Status(ctx)
			},
		},
		{
			Name:   "legend",
			Help:   "Show the map color scale.",
			Output: `{{ legend }}`,
			Run: func(context.Context, Controls, *Input) (any, error) {
				return nil, nil
			},
		},
		{
			Name:   "help",
			Help:   "List the commands.",
			Output: `{{ range .Result }}{{ printf "%-18s" .Usage }} {{ .Help }}` + "\n" + `{{ end }}`,
			Run: func(context.Context, Controls, *Input) (any, error) {
				return h.Commands(), nil
			},
		},
		{
			Name:    "quit",
			Aliases: []string{"exit"},
			Help:    "Close the session.",
			Output:  `Goodbye.`,
			Quit:    true,
			Run: func(context.Context, Controls, *Input) (any, error) {
				return nil, nil
			},
		},
	}
}
