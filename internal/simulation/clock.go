package simulation

import (
	"math"
	"time"

	"tankduel/engine/internal/gameplay"
)

// ClampDelta bounds a frame delta in seconds so hitches cannot destabilise the simulation.
// Non-finite or negative deltas become zero.
func ClampDelta(dt float64) float64 {
	if math.IsNaN(dt) || dt <= 0 {
		return 0
	}
	return math.Min(dt, gameplay.MaxDeltaTime)
}

// FrameClock turns frame timestamps into clamped simulation deltas.
type FrameClock struct {
	last    time.Time
	hasLast bool
}

// Delta returns the seconds elapsed since the previous call, or the default delta on the first call.
func (c *FrameClock) Delta(now time.Time) float64 {
	if c == nil {
		return gameplay.DefaultDeltaTime
	}
	if !c.hasLast {
		c.last = now
		c.hasLast = true
		return gameplay.DefaultDeltaTime
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return ClampDelta(dt)
}

// Reset forgets the previous timestamp.
func (c *FrameClock) Reset() {
	if c == nil {
		return
	}
	c.hasLast = false
	c.last = time.Time{}
}
