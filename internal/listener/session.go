package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/display"
)

const (
	sessionQueueSize = 16
	prompt           = "> "
	welcome          = "Anxiety disorders across Europe. Type 'help' for a list of commands."
)

// Session is one console connection driving the shared atlas.
type Session struct {
	id      string
	conn    io.ReadWriter
	handler *commands.Handler
	width   int

	msgs chan string
}

func newSession(id string, conn io.ReadWriter, handler *commands.Handler, width int) *Session {
	return &Session{
		id:      id,
		conn:    conn,
		handler: handler,
		width:   width,
		msgs:    make(chan string, sessionQueueSize),
	}
}

// notify queues an unsolicited line. Lines are dropped while the queue is full.
func (s *Session) notify(msg string) bool {
	select {
	case s.msgs <- msg:
		return true
	default:
		return false
	}
}

// Run reads commands until the client quits, the connection drops or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		scanner := bufio.NewScanner(s.conn)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-done:
				return
			}
		}
		inputErrChan <- scanner.Err()
	}()

	if err := s.writeLine(welcome); err != nil {
		return err
	}
	quit, err := s.exec(ctx, "status")
	if err != nil {
		return fmt.Errorf("initial status failed: %w", err)
	}
	if quit {
		return nil
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := s.writeLine("\nThe server is shutting down."); err != nil {
				slog.Warn("failed to write shutdown message", "session", s.id, "error", err)
			}
			return ctx.Err()

		case msg := <-s.msgs:
			if err := s.writeLine("\n" + msg); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line != "" {
				quit, err := s.exec(ctx, line)
				if err != nil {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if quit {
					return nil
				}
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

// exec runs one command and writes its output. User errors are shown to the
// client; anything else ends the session.
func (s *Session) exec(ctx context.Context, line string) (bool, error) {
	out, err := s.handler.Exec(ctx, line)
	switch {
	case errors.Is(err, commands.ErrQuit):
		return true, s.writeLine(out)
	case commands.IsUserError(err):
		return false, s.writeLine(err.Error())
	case err != nil:
		return false, err
	}
	if out == "" {
		return false, nil
	}
	return false, s.writeLine(out)
}

func (s *Session) prompt() error {
	_, err := s.conn.Write([]byte(prompt))
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := s.conn.Write([]byte(display.WrapWidth(msg, s.width) + "\n\n"))
	return err
}
