package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
)

type Config struct {
	LogLevel  string           `json:"log_level"`
	Data      DataConfig       `json:"data"`
	Playback  PlaybackConfig   `json:"playback"`
	Listeners []ListenerConfig `json:"listeners"`
	Nats      *NatsConfig      `json:"nats,omitempty"`
	Web       *WebConfig       `json:"web,omitempty"`

	// ConsoleWidth is the wrap column for console output. Zero keeps the default.
	ConsoleWidth int `json:"console_width,omitempty"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			el.Add(fmt.Errorf("parsing log_level: %w", err))
		}
	}

	el.Add(c.Data.validate())
	el.Add(c.Playback.validate())

	if c.ConsoleWidth < 0 {
		el.Add(fmt.Errorf("console_width cannot be negative"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	if c.Nats != nil {
		el.Add(c.Nats.validate())
	}
	if c.Web != nil {
		el.Add(c.Web.validate())
	}

	return el.Err()
}

func (c *Config) logLevel() slog.Level {
	var lvl slog.Level
	if c.LogLevel != "" {
		_ = lvl.UnmarshalText([]byte(c.LogLevel))
	}
	return lvl
}
