package atlas

import (
	"github.com/pixil98/go-atlas/internal/driver"
	"github.com/pixil98/go-atlas/internal/playback"
)

type AppOpt func(*App)

func WithSpeed(speed int) AppOpt {
	return func(a *App) {
		a.speed = speed
	}
}

func WithLoop(l *driver.Loop) AppOpt {
	return func(a *App) {
		a.loop = l
	}
}

// WithScheduler replaces the loop's own timers. Ticks must still be delivered
// on the loop.
func WithScheduler(s playback.Scheduler) AppOpt {
	return func(a *App) {
		a.scheduler = s
	}
}
