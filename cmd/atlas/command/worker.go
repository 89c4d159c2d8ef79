package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-atlas/internal/atlas"
	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/listener"
	"github.com/pixil98/go-atlas/internal/messaging"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()})))

	loader, err := cfg.Data.BuildLoader()
	if err != nil {
		return nil, fmt.Errorf("creating loader: %w", err)
	}

	// The app owns the event loop every other worker drives
	app := atlas.New(loader,
		atlas.WithSpeed(cfg.Playback.speed()),
		atlas.WithLoop(cfg.Playback.buildLoop()),
	)
	handler := commands.NewHandler(app)

	workers := service.WorkerList{
		"atlas": app,
	}

	// Console listeners
	if len(cfg.Listeners) > 0 {
		var opts []listener.ManagerOpt
		if cfg.ConsoleWidth > 0 {
			opts = append(opts, listener.WithWidth(cfg.ConsoleWidth))
		}
		cm := listener.NewConnectionManager(handler, opts...)
		app.Attach(cm)

		listeners := make(service.WorkerList, len(cfg.Listeners))
		for i, l := range cfg.Listeners {
			listener, err := l.BuildListener(cm)
			if err != nil {
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			listeners[fmt.Sprintf("%s-%d", l.Protocol, i)] = listener
		}
		workers["listeners"] = &listeners
	}

	// Frame broadcast and remote control
	if cfg.Nats != nil {
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		app.Attach(messaging.NewFramePublisher(ns))
		workers["nats"] = ns

		control, err := cfg.Nats.buildControlService(ns, handler)
		if err != nil {
			return nil, fmt.Errorf("creating control service: %w", err)
		}
		if control != nil {
			workers["control"] = control
		}
	}

	// Map, chart and HTTP controls
	if cfg.Web != nil {
		wt, err := cfg.Web.buildWebTarget(app, app.Banner(), handler, cfg.Data.schema())
		if err != nil {
			return nil, fmt.Errorf("creating web target: %w", err)
		}
		app.Attach(wt)
		workers["web"] = wt
	}

	return workers, nil
}
