package simulation

import (
	"context"
	"time"
)

// StepFunc advances the simulation by one fixed timestep. Returning false stops the loop.
type StepFunc func(step time.Duration) bool

// Loop drives a fixed timestep simulation in real time at the configured target frequency.
type Loop struct {
	step     time.Duration
	stepFunc StepFunc
	monitor  *TickMonitor
	ticker   *time.Ticker
	done     chan struct{}
}

// LoopOption customises a Loop.
type LoopOption func(*Loop)

// WithMonitor records how long every step takes.
func WithMonitor(monitor *TickMonitor) LoopOption {
	return func(l *Loop) {
		l.monitor = monitor
	}
}

// NewLoop configures a loop that targets the provided frames per second.
func NewLoop(targetHz float64, step StepFunc, opts ...LoopOption) *Loop {
	if targetHz <= 0 {
		targetHz = 60
	}
	if step == nil {
		step = func(time.Duration) bool { return true }
	}
	interval := time.Duration(float64(time.Second) / targetHz)
	if interval <= 0 {
		interval = time.Second / 60
	}
	l := &Loop{
		step:     interval,
		stepFunc: step,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Start begins ticking until the context is cancelled, the step function asks to stop, or Stop is invoked.
func (l *Loop) Start(ctx context.Context) {
	if l == nil || l.stepFunc == nil {
		return
	}

	l.ticker = time.NewTicker(l.step)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		defer l.ticker.Stop()
		last := time.Now()
		accumulator := time.Duration(0)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-l.ticker.C:
				//1.- Accumulate elapsed time and run fixed steps while catching up.
				accumulator += now.Sub(last)
				last = now
				for accumulator >= l.step {
					started := time.Now()
					keepGoing := l.stepFunc(l.step)
					l.monitor.Observe(time.Since(started))
					accumulator -= l.step
					if !keepGoing {
						return
					}
				}
			}
		}
	}()
}

// Done is closed once the loop goroutine exits.
func (l *Loop) Done() <-chan struct{} {
	if l == nil || l.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return l.done
}

// Stop waits for the goroutine to exit. Cancel the context passed to Start first.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	if l.done != nil {
		<-l.done
		l.done = nil
	}
}

// StepDuration exposes the configured timestep for testing.
func (l *Loop) StepDuration() time.Duration {
	if l == nil {
		return 0
	}
	return l.step
}
