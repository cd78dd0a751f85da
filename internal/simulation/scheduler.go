package simulation

// TimerID identifies a scheduled callback so it can be cancelled.
type TimerID uint64

type timer struct {
	id        TimerID
	remaining float64
	fn        func()
}

// Scheduler runs deferred callbacks against the simulated clock. Callbacks fire exactly
// once, in registration order, during the Advance call where their delay first reaches
// zero. It is driven from the single simulation goroutine and is not safe for concurrent use.
type Scheduler struct {
	timers     []timer
	nextID     TimerID
	generation uint64
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule registers fn to run after delay simulated seconds.
func (s *Scheduler) Schedule(delay float64, fn func()) TimerID {
	if s == nil || fn == nil {
		return 0
	}
	s.nextID++
	s.timers = append(s.timers, timer{id: s.nextID, remaining: delay, fn: fn})
	return s.nextID
}

// Cancel drops a pending callback and reports whether it was still queued.
func (s *Scheduler) Cancel(id TimerID) bool {
	if s == nil {
		return false
	}
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance counts dt off every timer and runs the ones that came due. It returns how many ran.
func (s *Scheduler) Advance(dt float64) int {
	if s == nil || len(s.timers) == 0 {
		return 0
	}
	//1.- Split the queue before running anything so callbacks may schedule freely.
	var due []timer
	kept := make([]timer, 0, len(s.timers))
	for _, t := range s.timers {
		t.remaining -= dt
		if t.remaining <= 0 {
			due = append(due, t)
			continue
		}
		kept = append(kept, t)
	}
	s.timers = kept

	//2.- A callback that resets the scheduler discards the rest of its cohort.
	generation := s.generation
	fired := 0
	for _, t := range due {
		if s.generation != generation {
			break
		}
		t.fn()
		fired++
	}
	return fired
}

// Reset drops every pending callback, including ones due in an Advance already running.
func (s *Scheduler) Reset() {
	if s == nil {
		return
	}
	s.timers = nil
	s.generation++
}

// Len reports how many callbacks are pending.
func (s *Scheduler) Len() int {
	if s == nil {
		return 0
	}
	return len(s.timers)
}
