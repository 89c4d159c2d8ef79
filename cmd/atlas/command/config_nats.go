package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-atlas/internal/messaging"
)

// NatsConfig enables the embedded broker. Frames are published on atlas.frame and
// atlas.data; console commands are accepted on atlas.control unless ReadOnly.
type NatsConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	StartTimeout   string `json:"start_timeout"`
	ControlTimeout string `json:"control_timeout,omitempty"`
	ReadOnly       bool   `json:"read_only,omitempty"`
}

func (c *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := optionalDuration("start_timeout", c.StartTimeout); err != nil {
		el.Add(err)
	}
	if _, err := optionalDuration("control_timeout", c.ControlTimeout); err != nil {
		el.Add(err)
	}
	if c.ReadOnly && c.ControlTimeout != "" {
		el.Add(fmt.Errorf("control_timeout has no effect on a read_only broker"))
	}
	if c.Port < -1 || c.Port > 65535 {
		el.Add(fmt.Errorf("port %d is out of range", c.Port))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt

	d, err := optionalDuration("start_timeout", c.StartTimeout)
	if err != nil {
		return nil, err
	}
	if d > 0 {
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}

	return messaging.NewNatsServer(opts...)
}

// buildControlService returns nil for a read_only broker.
func (c *NatsConfig) buildControlService(ns *messaging.NatsServer, exec messaging.Executor) (*messaging.ControlService, error) {
	if c.ReadOnly {
		return nil, nil
	}

	d, err := optionalDuration("control_timeout", c.ControlTimeout)
	if err != nil {
		return nil, err
	}
	return messaging.NewControlService(ns, exec, messaging.WithControlTimeout(d)), nil
}

// optionalDuration parses s, treating "" as zero.
func optionalDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return d, nil
}
