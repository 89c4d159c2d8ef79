package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-atlas/internal/view"
)

const (
	SubjectFrame   = "atlas.frame"
	SubjectData    = "atlas.data"
	SubjectControl = "atlas.control"
)

// Publisher is the subset of NatsServer used to send frames.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// FramePublisher broadcasts every frame on SubjectFrame and the year's feature
// collection on SubjectData whenever the year changes.
type FramePublisher struct {
	pub Publisher

	mu       sync.Mutex
	lastYear int
}

func NewFramePublisher(pub Publisher) *FramePublisher {
	return &FramePublisher{pub: pub}
}

func (p *FramePublisher) Update(ctx context.Context, frame *view.Frame) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if err := p.pub.Publish(SubjectFrame, b); err != nil {
		if errors.Is(err, ErrNotStarted) {
			slog.DebugContext(ctx, "nats not started, frame not published", "seq", frame.Seq)
			return nil
		}
		return fmt.Errorf("publishing frame %d: %w", frame.Seq, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if frame.Year == p.lastYear || frame.Data == nil {
		return nil
	}

	b, err = json.Marshal(frame.Data)
	if err != nil {
		return fmt.Errorf("encoding %d data: %w", frame.Year, err)
	}
	if err := p.pub.Publish(SubjectData, b); err != nil {
		return fmt.Errorf("publishing %d data: %w", frame.Year, err)
	}
	p.lastYear = frame.Year
	return nil
}

func (p *FramePublisher) Close() error {
	return nil
}

func (p *FramePublisher) Name() string {
	return "nats"
}
