// Package listener serves the text console over telnet and ssh.
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/display"
	"github.com/pixil98/go-atlas/internal/metrics"
	"github.com/pixil98/go-atlas/internal/view"
)

// ConnectionManager runs a console session for every accepted connection and
// tells the sessions about the years the animation passes through.
type ConnectionManager struct {
	handler *commands.Handler
	width   int

	mu       sync.RWMutex
	sessions map[string]*Session
	playing  bool
}

func NewConnectionManager(handler *commands.Handler, opts ...ManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		handler:  handler,
		width:    display.DefaultWidth,
		sessions: map[string]*Session{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	s := newSession(uuid.NewString(), conn, m.handler, m.width)

	m.add(s)
	defer m.remove(s.id)

	slog.InfoContext(ctx, "console session started", "session", s.id)
	if err := s.Run(ctx); err != nil {
		slog.WarnContext(ctx, "console session", "session", s.id, "error", err)
		return
	}
	slog.InfoContext(ctx, "console session ended", "session", s.id)
}

// RunCommand runs a single command line outside any session and writes its
// output to w. A user error is written too and then returned.
func (m *ConnectionManager) RunCommand(ctx context.Context, w io.Writer, line string) error {
	out, err := m.handler.Exec(ctx, line)
	switch {
	case errors.Is(err, commands.ErrQuit):
		err = nil
	case commands.IsUserError(err):
		out = err.Error()
	case err != nil:
		return err
	}

	if out != "" {
		if _, werr := io.WriteString(w, display.WrapWidth(out, m.width)+"\n"); werr != nil {
			return werr
		}
	}
	return err
}

// Sessions returns the number of connected sessions.
func (m *ConnectionManager) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *ConnectionManager) add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
	metrics.ConsoleSessions.Set(float64(len(m.sessions)))
}

func (m *ConnectionManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	metrics.ConsoleSessions.Set(float64(len(m.sessions)))
}

// Update announces the year to every session while the animation runs, and
// once more when it stops.
func (m *ConnectionManager) Update(ctx context.Context, frame *view.Frame) error {
	m.mu.Lock()
	wasPlaying := m.playing
	m.playing = frame.Playback.Playing
	m.mu.Unlock()

	if !frame.Playback.Playing && !wasPlaying {
		return nil
	}

	msg := yearLine(frame)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, s := range m.sessions {
		if !s.notify(msg) {
			slog.DebugContext(ctx, "session queue full, dropping update", "session", id)
		}
	}
	return nil
}

// Close leaves running sessions alone; they end with their listener's context.
func (m *ConnectionManager) Close() error {
	if n := m.Sessions(); n > 0 {
		slog.Info("console updates stopped", "sessions", n)
	}
	return nil
}

func (m *ConnectionManager) Name() string {
	return "console"
}

func yearLine(frame *view.Frame) string {
	line := fmt.Sprintf("%d  %s", frame.Year, display.Timeline(frame.Playback.Years, frame.Year))

	if len(frame.Chart.Datasets) > 0 {
		mean := frame.Chart.Mean().Data
		if i := frame.Chart.CurrentIndex; i >= 0 && i < len(mean) && mean[i].Valid {
			line += fmt.Sprintf("  mean %.2f", mean[i].Value)
		}
	}
	if !frame.Playback.Playing {
		line += "  (stopped)"
	}
	return line
}
