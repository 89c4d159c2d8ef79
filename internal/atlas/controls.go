package atlas

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/view"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

// Status is a read-only summary of the app.
type Status struct {
	Playback  playback.Snapshot `json:"playback"`
	Selected  string            `json:"selected,omitempty"`
	Extruded  []string          `json:"extruded"`
	Show3D    bool              `json:"show3d"`
	ShowStats bool              `json:"showStats"`
	Mean      float64           `json:"mean"`
	Countries []string          `json:"countries"`
	Banner    view.BannerStatus `json:"banner"`

	// Trend is the series the chart currently shows.
	TrendLabel string          `json:"trendLabel"`
	Trend      []series.Sample `json:"trend"`
}

// do runs fn on the loop once data is loaded.
func (a *App) do(ctx context.Context, fn func(context.Context) error) error {
	return a.loop.Do(ctx, func(ctx context.Context) error {
		if a.ctrl == nil {
			return ErrNotReady
		}
		return fn(ctx)
	})
}

func (a *App) Play(ctx context.Context) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.Play()
		return nil
	})
}

func (a *App) Pause(ctx context.Context) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.Pause()
		return nil
	})
}

func (a *App) TogglePlay(ctx context.Context) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.Toggle()
		return nil
	})
}

func (a *App) Next(ctx context.Context) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.Next()
		return nil
	})
}

func (a *App) Previous(ctx context.Context) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.Previous()
		return nil
	})
}

func (a *App) JumpTo(ctx context.Context, year int) error {
	return a.do(ctx, func(context.Context) error {
		return a.ctrl.JumpTo(year)
	})
}

func (a *App) SetSpeed(ctx context.Context, speed int) error {
	return a.do(ctx, func(context.Context) error {
		a.ctrl.SetSpeed(speed)
		return nil
	})
}

// Select toggles the extrusion of the feature whose id or display name is key
// in the current year and makes it the selected country.
func (a *App) Select(ctx context.Context, key string) (Popup, error) {
	var p Popup
	err := a.do(ctx, func(ctx context.Context) error {
		year := a.ctrl.Year()
		f, ok := a.store.FeatureByID(year, key)
		if !ok {
			f, ok = a.store.FeatureByName(year, key)
		}
		if !ok {
			return fmt.Errorf("%q in %d: %w", key, year, yeardata.ErrNoFeature)
		}
		p = a.toggle(ctx, f)
		return nil
	})
	return p, err
}

// SelectAt toggles the feature under the given map coordinate.
func (a *App) SelectAt(ctx context.Context, lon, lat float64) (Popup, error) {
	var p Popup
	err := a.do(ctx, func(ctx context.Context) error {
		year := a.ctrl.Year()
		f, ok := a.store.FeatureAt(year, orb.Point{lon, lat})
		if !ok {
			return fmt.Errorf("%.4f,%.4f in %d: %w", lon, lat, year, yeardata.ErrNoFeature)
		}
		p = a.toggle(ctx, f)
		return nil
	})
	return p, err
}

func (a *App) toggle(ctx context.Context, f *geojson.Feature) Popup {
	schema := a.store.Schema()
	a.sel.Toggle(schema.ID(f), schema.Name(f))
	p := a.popup(f)
	a.push(ctx)
	return p
}

func (a *App) popup(f *geojson.Feature) Popup {
	schema := a.store.Schema()
	v, ok := schema.Indicator(f)
	id := schema.ID(f)
	return Popup{
		ID:       id,
		Country:  schema.Name(f),
		Year:     a.ctrl.Year(),
		Value:    v,
		HasValue: ok,
		Extruded: a.sel.Extruded(id),
	}
}

// ClearSelection drops the selected country. Extrusion flags are kept.
func (a *App) ClearSelection(ctx context.Context) error {
	return a.do(ctx, func(ctx context.Context) error {
		a.sel.Clear()
		a.push(ctx)
		return nil
	})
}

// Toggle3D switches every extrusion on or off and returns the new setting.
func (a *App) Toggle3D(ctx context.Context) (bool, error) {
	var on bool
	err := a.do(ctx, func(ctx context.Context) error {
		a.show3D = !a.show3D
		on = a.show3D
		a.push(ctx)
		return nil
	})
	return on, err
}

// ToggleStats shows or hides the trend chart panel and returns the new setting.
func (a *App) ToggleStats(ctx context.Context) (bool, error) {
	var on bool
	err := a.do(ctx, func(ctx context.Context) error {
		a.showStats = !a.showStats
		on = a.showStats
		a.push(ctx)
		return nil
	})
	return on, err
}

// Describe returns the popup for a country in the current year without toggling it.
func (a *App) Describe(ctx context.Context, key string) (Popup, error) {
	var p Popup
	err := a.do(ctx, func(context.Context) error {
		year := a.ctrl.Year()
		f, ok := a.store.FeatureByID(year, key)
		if !ok {
			f, ok = a.store.FeatureByName(year, key)
		}
		if !ok {
			return fmt.Errorf("%q in %d: %w", key, year, yeardata.ErrNoFeature)
		}
		p = a.popup(f)
		return nil
	})
	return p, err
}

func (a *App) Status(ctx context.Context) (Status, error) {
	var s Status
	err := a.do(ctx, func(context.Context) error {
		snap := a.ctrl.Snapshot()
		name, selected := a.sel.Selected()
		chart := view.BuildChart(a.store, snap.Years, snap.Index, name, selected)
		trend := chart.Mean()
		if selected {
			trend = chart.Country()
		}
		s = Status{
			Playback:  snap,
			Selected:  name,
			Extruded:  a.sel.ExtrudedIDs(),
			Show3D:    a.show3D,
			ShowStats: a.showStats,
			Mean:      series.Mean(a.store, []int{snap.Year})[0],
			Countries: a.store.Names(),
			Banner:    a.banner.Status(),

			TrendLabel: trend.Label,
			Trend:      trend.Data,
		}
		return nil
	})
	return s, err
}
