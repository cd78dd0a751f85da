package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Envelope carries an event together with sequencing metadata.
type Envelope struct {
	Sequence uint64
	// Clock is the simulated match time in seconds.
	Clock float64
	Round int
	Event Event
}

// Kind returns the payload kind, or an empty string for an empty envelope.
func (e Envelope) Kind() Kind {
	if e.Event == nil {
		return ""
	}
	return e.Event.Kind()
}

type wireEnvelope struct {
	Sequence uint64          `json:"seq"`
	Clock    float64         `json:"clock"`
	Round    int             `json:"round"`
	Kind     Kind            `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
}

// MarshalJSON renders the envelope as one flat JSON object.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Event == nil {
		return nil, errors.New("envelope has no event")
	}
	payload, err := json.Marshal(e.Event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.Event.Kind(), err)
	}
	return json.Marshal(wireEnvelope{Sequence: e.Sequence, Clock: e.Clock, Round: e.Round, Kind: e.Event.Kind(), Payload: payload})
}

// UnmarshalJSON restores the typed payload using the kind tag.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	factory, ok := decoders[wire.Kind]
	if !ok {
		return fmt.Errorf("unknown event kind %q", wire.Kind)
	}
	target := factory()
	if err := json.Unmarshal(wire.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", wire.Kind, err)
	}
	//1.- Store the value form so decoded envelopes compare equal to published ones.
	e.Sequence = wire.Sequence
	e.Clock = wire.Clock
	e.Round = wire.Round
	e.Event = reflect.ValueOf(target).Elem().Interface().(Event)
	return nil
}

// Config controls the retention policy for the in-memory log.
type Config struct {
	Retain int
}

// Default retention keeps the last 512 events if no explicit value is provided.
const defaultRetention = 512

// Log assigns sequence numbers to events and keeps the most recent ones for readers.
type Log struct {
	mu        sync.Mutex
	nextSeq   uint64
	retention int
	entries   []Envelope
}

// NewLog constructs a log using the provided configuration.
func NewLog(cfg Config) *Log {
	retention := cfg.Retain
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Log{retention: retention}
}

// Append stamps ev with the next sequence number and retains it.
func (l *Log) Append(clock float64, round int, ev Event) Envelope {
	if l == nil || ev == nil {
		return Envelope{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSeq++
	env := Envelope{Sequence: l.nextSeq, Clock: clock, Round: round, Event: ev}
	l.entries = append(l.entries, env)
	//1.- Drop the oldest entries once retention is exceeded.
	if overflow := len(l.entries) - l.retention; overflow > 0 {
		l.entries = append([]Envelope(nil), l.entries[overflow:]...)
	}
	return env
}

// Since returns the retained envelopes with a sequence greater than after, oldest first.
func (l *Log) Since(after uint64) []Envelope {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Envelope, 0, len(l.entries))
	for _, env := range l.entries {
		if env.Sequence > after {
			out = append(out, env)
		}
	}
	return out
}

// LastSequence returns the sequence number of the newest event.
func (l *Log) LastSequence() uint64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq
}

// Len reports how many envelopes are retained.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
