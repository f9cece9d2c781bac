package core

import "time"

type Clock struct {
	startTime time.Time
	running   bool
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = time.Since(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.running = true
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns nanoseconds since Start, as of the last Update.
func (c *Clock) Elapsed() float64 {
	return float64(c.elapsed)
}

func (c *Clock) ElapsedDuration() time.Duration {
	return c.elapsed
}

func (c *Clock) ElapsedSeconds() float64 {
	return c.elapsed.Seconds()
}

func (c *Clock) ElapsedMS() float64 {
	return float64(c.elapsed) / float64(time.Millisecond)
}
