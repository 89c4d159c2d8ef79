// Package playback owns the timeline: the current year, the play/pause state and
// the animation speed.
package playback

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	MinSpeed     = 1
	MaxSpeed     = 10
	DefaultSpeed = 5
)

var (
	ErrNoYears     = errors.New("no years to play")
	ErrUnknownYear = errors.New("year not loaded")
)

// Scheduler starts repeating timers. The returned cancel func stops the timer
// and must be safe to call more than once.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// Interval returns the tick interval for a speed. Faster speeds tick sooner.
func Interval(speed int) time.Duration {
	return time.Duration(1100-clampSpeed(speed)*100) * time.Millisecond
}

func clampSpeed(speed int) int {
	return min(max(speed, MinSpeed), MaxSpeed)
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Year       int   `json:"year"`
	Index      int   `json:"index"`
	Years      []int `json:"years"`
	Playing    bool  `json:"playing"`
	Speed      int   `json:"speed"`
	IntervalMS int64 `json:"interval_ms"`
}

// Controller is not safe for concurrent use. All calls, including the ticks
// delivered by the Scheduler, are expected to come from one goroutine.
type Controller struct {
	years     []int
	index     int
	playing   bool
	speed     int
	scheduler Scheduler

	cancel   func()
	timerGen int

	onYear  func(Snapshot)
	onState func(Snapshot)
}

// NewController creates a stopped controller positioned at the first year.
func NewController(years []int, scheduler Scheduler, opts ...ControllerOpt) (*Controller, error) {
	if len(years) == 0 {
		return nil, ErrNoYears
	}
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}

	sorted := slices.Clone(years)
	slices.Sort(sorted)

	c := &Controller{
		years:     slices.Compact(sorted),
		speed:     DefaultSpeed,
		scheduler: scheduler,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Controller) Year() int {
	return c.years[c.index]
}

func (c *Controller) Playing() bool {
	return c.playing
}

func (c *Controller) Speed() int {
	return c.speed
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Year:       c.Year(),
		Index:      c.index,
		Years:      slices.Clone(c.years),
		Playing:    c.playing,
		Speed:      c.speed,
		IntervalMS: Interval(c.speed).Milliseconds(),
	}
}

// Play starts the timer. Playing again restarts it so only one timer is ever active.
func (c *Controller) Play() {
	wasPlaying := c.playing
	c.playing = true
	c.startTimer()
	if !wasPlaying {
		c.stateChanged()
	}
}

// Pause stops the timer. Pausing while stopped does nothing.
func (c *Controller) Pause() {
	if !c.playing {
		return
	}
	c.stop()
	c.stateChanged()
}

// Toggle plays when stopped and pauses when playing.
func (c *Controller) Toggle() {
	if c.playing {
		c.Pause()
		return
	}
	c.Play()
}

// SetSpeed clamps v to [MinSpeed, MaxSpeed]. A playing timer is restarted at the new interval.
func (c *Controller) SetSpeed(v int) {
	c.speed = clampSpeed(v)
	if c.playing {
		c.startTimer()
	}
	c.stateChanged()
}

// Next pauses and moves one year forward, stopping at the last year.
func (c *Controller) Next() {
	c.moveTo(min(c.index+1, len(c.years)-1))
}

// Previous pauses and moves one year back, stopping at the first year.
func (c *Controller) Previous() {
	c.moveTo(max(c.index-1, 0))
}

// JumpTo pauses and moves to year, which must be loaded.
func (c *Controller) JumpTo(year int) error {
	i, ok := slices.BinarySearch(c.years, year)
	if !ok {
		return fmt.Errorf("jumping to %d: %w", year, ErrUnknownYear)
	}
	c.moveTo(i)
	return nil
}

// Tick advances to the next year. Advancing past the last year returns to the
// first year and stops playback. Ticks while stopped are ignored.
func (c *Controller) Tick() {
	if !c.playing {
		return
	}

	if c.index+1 < len(c.years) {
		c.index++
		c.yearChanged()
		return
	}

	c.stop()
	if c.index == 0 {
		// Only one year is loaded; playback stops without changing year.
		c.stateChanged()
		return
	}
	c.index = 0
	c.yearChanged()
}

func (c *Controller) moveTo(index int) {
	wasPlaying := c.playing
	if wasPlaying {
		c.stop()
	}

	if index != c.index {
		c.index = index
		c.yearChanged()
		return
	}

	if wasPlaying {
		c.stateChanged()
	}
}

func (c *Controller) startTimer() {
	c.cancelTimer()

	c.timerGen++
	gen := c.timerGen
	c.cancel = c.scheduler.Every(Interval(c.speed), func() {
		// Ticks from a replaced timer may still be in flight.
		if gen != c.timerGen {
			return
		}
		c.Tick()
	})
}

func (c *Controller) cancelTimer() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) stop() {
	c.playing = false
	c.cancelTimer()
	c.timerGen++
}

// Close stops any running timer without notifying.
func (c *Controller) Close() {
	c.playing = false
	c.cancelTimer()
}

func (c *Controller) yearChanged() {
	if c.onYear != nil {
		c.onYear(c.Snapshot())
	}
}

func (c *Controller) stateChanged() {
	if c.onState != nil {
		c.onState(c.Snapshot())
	}
}
