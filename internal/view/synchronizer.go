// Package view pushes the current year's data and the trend chart to every
// attached renderer.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-atlas/internal/metrics"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

// Target is a renderer that receives frames.
type Target interface {
	// Update replaces the target's view with frame.
	Update(ctx context.Context, frame *Frame) error

	// Close releases the target.
	Close() error

	// Name is used in logs and error messages.
	Name() string
}

type Synchronizer struct {
	store  *yeardata.Store
	banner *Banner

	mu      sync.Mutex
	targets []Target
	seq     uint64
}

func NewSynchronizer(store *yeardata.Store, banner *Banner, targets ...Target) *Synchronizer {
	return &Synchronizer{
		store:   store,
		banner:  banner,
		targets: targets,
	}
}

// Sync builds a frame for state and pushes it to every target. It does nothing
// when the current year has no data. A failing target does not stop the others;
// their errors are joined, returned and shown on the banner.
func (s *Synchronizer) Sync(ctx context.Context, state State) error {
	year := state.Playback.Year
	fc, ok := s.store.Get(year)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.seq++
	frame := &Frame{
		Seq:       s.seq,
		Year:      year,
		Data:      fc,
		Chart:     BuildChart(s.store, state.Playback.Years, state.Playback.Index, state.Selected, state.HasSelection),
		Playback:  state.Playback,
		Selected:  state.Selected,
		Touched:   state.Touched,
		Extruded:  state.Extruded,
		Show3D:    state.Show3D,
		ShowStats: state.ShowStats,
	}
	if !state.HasSelection {
		frame.Selected = ""
	}
	if frame.Extruded == nil {
		frame.Extruded = []string{}
	}
	targets := make([]Target, len(s.targets))
	copy(targets, s.targets)
	s.mu.Unlock()

	metrics.ViewSyncsTotal.Inc()
	metrics.CurrentYear.Set(float64(year))

	var errs []error
	for _, t := range targets {
		if err := t.Update(ctx, frame); err != nil {
			metrics.TargetErrorsTotal.WithLabelValues(t.Name()).Inc()
			slog.ErrorContext(ctx, "updating target", "target", t.Name(), "year", year, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}

	err := errors.Join(errs...)
	if err != nil && s.banner != nil {
		s.banner.ShowError(fmt.Sprintf("Render error: %v", err))
	}
	return err
}

// Close closes every target.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	targets := s.targets
	s.targets = nil
	s.mu.Unlock()

	var errs []error
	for _, t := range targets {
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}
