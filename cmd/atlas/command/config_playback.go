package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-atlas/internal/driver"
	"github.com/pixil98/go-atlas/internal/playback"
)

type PlaybackConfig struct {
	Speed int `json:"speed"`
	// QueueSize bounds the controls waiting on the event loop.
	QueueSize int `json:"queue_size,omitempty"`
}

func (c *PlaybackConfig) validate() error {
	el := errors.NewErrorList()

	if c.Speed != 0 && (c.Speed < playback.MinSpeed || c.Speed > playback.MaxSpeed) {
		el.Add(fmt.Errorf("speed must be between %d and %d", playback.MinSpeed, playback.MaxSpeed))
	}

	if c.QueueSize < 0 {
		el.Add(fmt.Errorf("queue_size cannot be negative"))
	}

	return el.Err()
}

func (c *PlaybackConfig) speed() int {
	if c.Speed == 0 {
		return playback.DefaultSpeed
	}
	return c.Speed
}

func (c *PlaybackConfig) buildLoop() *driver.Loop {
	return driver.NewLoop(driver.WithQueueSize(c.QueueSize))
}
