// Package driver runs every state mutation on a single goroutine. Handlers run
// to completion one at a time in the order they were queued.
package driver

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	DefaultQueueSize = 64
)

var ErrStopped = errors.New("event loop stopped")

type task struct {
	fn   func(context.Context) error
	done chan error
}

type Loop struct {
	queueSize int
	tasks     chan task
	stopped   chan struct{}
	stopOnce  sync.Once
}

func NewLoop(opts ...LoopOpt) *Loop {
	l := &Loop{
		queueSize: DefaultQueueSize,
		stopped:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.tasks = make(chan task, l.queueSize)
	return l
}

// Start runs queued handlers until ctx is done.
func (l *Loop) Start(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-l.tasks:
			t.done <- t.fn(ctx)
		}
	}
}

// Do queues fn and waits for it to finish. It must not be called from a handler.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	t := task{fn: fn, done: make(chan error, 1)}

	select {
	case l.tasks <- t:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Every queues fn on the loop every d until cancel is called or the loop stops.
// Ticks that arrive while the loop is busy are dropped by the ticker.
func (l *Loop) Every(d time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-l.stopped:
				return
			case <-ticker.C:
			}

			t := task{
				fn: func(context.Context) error {
					select {
					case <-done:
					default:
						fn()
					}
					return nil
				},
				done: make(chan error, 1),
			}

			select {
			case l.tasks <- t:
			case <-done:
				return
			case <-l.stopped:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
