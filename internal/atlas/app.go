// Package atlas ties the year data, the playback timeline, the selection and the
// renderers together. Every mutation runs on one event loop.
package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-atlas/internal/driver"
	"github.com/pixil98/go-atlas/internal/metrics"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/selection"
	"github.com/pixil98/go-atlas/internal/view"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

const NoDataMessage = "No data could be loaded. Please check your data files or network connection."

var ErrNotReady = errors.New("data is not loaded")

// StoreLoader produces the year data store.
type StoreLoader interface {
	Load(ctx context.Context) (*yeardata.Store, error)
}

type App struct {
	loader    StoreLoader
	loop      *driver.Loop
	scheduler playback.Scheduler
	banner    *view.Banner
	targets   []view.Target
	speed     int
	ready     chan struct{}

	// Owned by the loop once Init returns.
	store     *yeardata.Store
	sync      *view.Synchronizer
	ctrl      *playback.Controller
	sel       *selection.State
	show3D    bool
	showStats bool
}

func New(loader StoreLoader, opts ...AppOpt) *App {
	a := &App{
		loader: loader,
		banner: view.NewBanner(),
		speed:  playback.DefaultSpeed,
		ready:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.loop == nil {
		a.loop = driver.NewLoop()
	}
	if a.scheduler == nil {
		a.scheduler = a.loop
	}

	return a
}

// Banner is the user-visible message area.
func (a *App) Banner() *view.Banner {
	return a.banner
}

// Ready is closed once initialization has finished, whether or not it succeeded.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Attach adds renderers that drive the app themselves. It must be called before
// Start.
func (a *App) Attach(targets ...view.Target) {
	a.targets = append(a.targets, targets...)
}

// Start initializes the app and then serves controls until ctx is done. A failed
// load is shown on the banner and leaves the app running without data so the
// message stays visible.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		slog.ErrorContext(ctx, "initialization halted", "error", err)
	}
	close(a.ready)

	err := a.loop.Start(ctx)

	if a.ctrl != nil {
		a.ctrl.Close()
	}
	if a.sync != nil {
		if cerr := a.sync.Close(); cerr != nil {
			slog.WarnContext(ctx, "closing renderers", "error", cerr)
		}
	}
	return err
}

// Init loads the data, positions the timeline at the first year and pushes the
// first frame. When nothing loads the banner shows the error and no renderer is
// ever updated.
func (a *App) Init(ctx context.Context) error {
	store, err := a.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, yeardata.ErrNoData) {
			a.banner.ShowError(NoDataMessage)
		} else {
			a.banner.ShowError(fmt.Sprintf("Error loading data: %v", err))
		}
		return fmt.Errorf("loading data: %w", err)
	}

	ctrl, err := playback.NewController(store.Years(), countingScheduler{a.scheduler},
		playback.WithSpeed(a.speed),
		playback.WithYearCallback(func(playback.Snapshot) { a.push(ctx) }),
		playback.WithStateCallback(func(playback.Snapshot) { a.push(ctx) }),
	)
	if err != nil {
		a.banner.ShowError(fmt.Sprintf("Error loading data: %v", err))
		return fmt.Errorf("creating controller: %w", err)
	}

	a.store = store
	a.ctrl = ctrl
	a.sel = selection.New()
	a.show3D = true
	a.showStats = true
	a.sync = view.NewSynchronizer(store, a.banner, a.targets...)
	a.banner.Ready()

	years := store.Years()
	slog.InfoContext(ctx, "atlas ready", "years", len(years), "first", years[0], "last", years[len(years)-1])

	a.push(ctx)
	return nil
}

func (a *App) state() view.State {
	name, ok := a.sel.Selected()
	return view.State{
		Playback:     a.ctrl.Snapshot(),
		Selected:     name,
		HasSelection: ok,
		Touched:      a.sel.Touched(),
		Extruded:     a.sel.ExtrudedIDs(),
		Show3D:       a.show3D,
		ShowStats:    a.showStats,
	}
}

// push syncs every renderer with the current state. Renderer failures are
// already on the banner.
func (a *App) push(ctx context.Context) {
	if err := a.sync.Sync(ctx, a.state()); err != nil {
		slog.WarnContext(ctx, "view sync incomplete", "error", err)
	}
}

// countingScheduler counts the ticks it delivers.
type countingScheduler struct {
	playback.Scheduler
}

func (s countingScheduler) Every(d time.Duration, fn func()) func() {
	return s.Scheduler.Every(d, func() {
		metrics.PlaybackTicksTotal.Inc()
		fn()
	})
}
