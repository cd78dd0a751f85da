package replay

import (
	"fmt"
	"sync"

	"tankduel/engine/internal/events"
)

// DefaultFrameEvery captures a frame twice a second at 60 ticks per second.
const DefaultFrameEvery = 30

// Stats summarises how much a recorder has written.
type Stats struct {
	Ticks        uint64
	Events       int
	Frames       int
	LastSequence uint64
}

// Recorder copies a running match into a Writer: every new event from the log and a frame
// every few ticks.
type Recorder struct {
	mu      sync.Mutex
	writer  *Writer
	log     *events.Log
	every   uint64
	lastSeq uint64
	stats   Stats
}

// NewRecorder wires an event log to a writer. every is the frame period in ticks.
func NewRecorder(writer *Writer, log *events.Log, every uint64) (*Recorder, error) {
	if writer == nil {
		return nil, fmt.Errorf("replay writer must be provided")
	}
	if every == 0 {
		every = DefaultFrameEvery
	}
	return &Recorder{writer: writer, log: log, every: every}, nil
}

// RecordTick drains new events and captures a frame when tick lands on the frame period.
func (r *Recorder) RecordTick(tick uint64, src Source) error {
	if r == nil {
		return fmt.Errorf("recorder not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	//1.- Events first so a frame never precedes the event that caused it.
	if err := r.drainLocked(); err != nil {
		return err
	}
	r.stats.Ticks = tick
	if src == nil || tick%r.every != 0 {
		return nil
	}
	if err := r.writer.AppendFrame(CaptureFrame(tick, src)); err != nil {
		return err
	}
	r.stats.Frames++
	return nil
}

// Drain copies any events appended since the last call.
func (r *Recorder) Drain() error {
	if r == nil {
		return fmt.Errorf("recorder not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drainLocked()
}

func (r *Recorder) drainLocked() error {
	for _, env := range r.log.Since(r.lastSeq) {
		if err := r.writer.AppendEvent(env); err != nil {
			return err
		}
		r.lastSeq = env.Sequence
		r.stats.Events++
	}
	r.stats.LastSequence = r.lastSeq
	return nil
}

// Snapshot returns the recorder counters.
func (r *Recorder) Snapshot() Stats {
	if r == nil {
		return Stats{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
