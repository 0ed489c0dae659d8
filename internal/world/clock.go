package world

import "time"

// Tick is a discrete simulation time. Scheduled work is expressed as the tick
// at or after which it must run.
type Tick uint64

// maxCatchUp bounds how many ticks one Accumulate call may report, so a long
// host stall does not turn into a burst that starves the transport.
const maxCatchUp = 10

// Clock converts wall time into simulation ticks with an integer accumulator.
type Clock struct {
	now  Tick
	rate time.Duration
	acc  time.Duration
}

func NewClock(rate time.Duration) *Clock {
	if rate <= 0 {
		rate = 100 * time.Millisecond
	}
	return &Clock{rate: rate}
}

func (c *Clock) Now() Tick           { return c.now }
func (c *Clock) Rate() time.Duration { return c.rate }

// Advance moves the clock one tick forward and returns the new tick.
func (c *Clock) Advance() Tick {
	c.now++
	return c.now
}

// Set places the clock at t (restoring saved state).
func (c *Clock) Set(t Tick) {
	c.now = t
	c.acc = 0
}

// Accumulate adds elapsed wall time and returns how many whole ticks are due.
// The remainder carries over to the next call.
func (c *Clock) Accumulate(elapsed time.Duration) int {
	c.acc += elapsed
	n := int(c.acc / c.rate)
	c.acc -= time.Duration(n) * c.rate
	if n > maxCatchUp {
		n = maxCatchUp
	}
	return n
}

// Ticks converts a duration to a tick count, rounding up.
func (c *Clock) Ticks(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	return Tick((d + c.rate - 1) / c.rate)
}

// After returns the tick d from now.
func (c *Clock) After(d time.Duration) Tick {
	return c.now + c.Ticks(d)
}

// Seconds is the simulation time in seconds.
func (c *Clock) Seconds() float64 {
	return float64(c.now) * c.rate.Seconds()
}

// FrameTime is the length of one tick in seconds.
func (c *Clock) FrameTime() float64 {
	return c.rate.Seconds()
}
