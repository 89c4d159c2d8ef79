package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-atlas/internal/commands"
)

const DefaultControlTimeout = 5 * time.Second

// Executor runs one console command line.
type Executor interface {
	Exec(ctx context.Context, line string) (string, error)
}

// ControlReply is the response to a request on SubjectControl.
type ControlReply struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Subscriber is the subset of NatsServer used to receive commands.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte) []byte) (func(), error)
	Ready() <-chan struct{}
}

// ControlService accepts console commands on SubjectControl and replies with
// their output.
type ControlService struct {
	sub     Subscriber
	exec    Executor
	timeout time.Duration
}

type ControlOpt func(*ControlService)

// WithControlTimeout bounds how long one remote command may run.
func WithControlTimeout(d time.Duration) ControlOpt {
	return func(s *ControlService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewControlService(sub Subscriber, exec Executor, opts ...ControlOpt) *ControlService {
	s := &ControlService{
		sub:     sub,
		exec:    exec,
		timeout: DefaultControlTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ControlService) Start(ctx context.Context) error {
	select {
	case <-s.sub.Ready():
	case <-ctx.Done():
		return nil
	}

	unsubscribe, err := s.sub.Subscribe(SubjectControl, func(data []byte) []byte {
		return s.handle(ctx, data)
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "accepting control commands", "subject", SubjectControl)

	<-ctx.Done()
	unsubscribe()
	return nil
}

func (s *ControlService) handle(ctx context.Context, data []byte) []byte {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reply ControlReply
	out, err := s.exec.Exec(ctx, string(data))
	switch {
	case err == nil, errors.Is(err, commands.ErrQuit):
		reply.Output = out
	case commands.IsUserError(err):
		reply.Error = err.Error()
	default:
		slog.ErrorContext(ctx, "control command failed", "command", string(data), "error", err)
		reply.Error = fmt.Sprintf("command failed: %v", err)
	}

	b, _ := json.Marshal(reply)
	return b
}
