package playback

type ControllerOpt func(*Controller)

// WithSpeed sets the initial speed, clamped to [MinSpeed, MaxSpeed].
func WithSpeed(speed int) ControllerOpt {
	return func(c *Controller) {
		c.speed = clampSpeed(speed)
	}
}

// WithYearCallback is invoked once after every transition that changes the
// current year. The snapshot also reflects any play state change made by the
// same transition.
func WithYearCallback(fn func(Snapshot)) ControllerOpt {
	return func(c *Controller) {
		c.onYear = fn
	}
}

// WithStateCallback is invoked after play, pause and speed changes that leave
// the current year unchanged.
func WithStateCallback(fn func(Snapshot)) ControllerOpt {
	return func(c *Controller) {
		c.onState = fn
	}
}
