package combat

import "sync"

// HistoryCapacity bounds how many damage entries are remembered.
const HistoryCapacity = 10

// HistoryEntry records one tank damaging another.
type HistoryEntry struct {
	Attacker string
	Victim   string
	Amount   float64
	// Timestamp is the simulated match clock in seconds.
	Timestamp float64
}

// History is a bounded most-recent-first log of damage dealt.
type History struct {
	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{entries: make([]HistoryEntry, 0, HistoryCapacity)}
}

// Record prepends an entry and evicts the oldest one past capacity.
// Entries without a positive amount or with missing names are ignored.
func (h *History) Record(entry HistoryEntry) bool {
	if h == nil || !(entry.Amount > 0) || entry.Attacker == "" || entry.Victim == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	if len(h.entries) > HistoryCapacity {
		h.entries = h.entries[:HistoryCapacity]
	}
	return true
}

// Recent returns a copy of the entries, newest first.
func (h *History) Recent() []HistoryEntry {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// LastAttackerOf returns the most recent tank that damaged victim.
func (h *History) LastAttackerOf(victim string) (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, entry := range h.entries {
		if entry.Victim == victim {
			return entry.Attacker, true
		}
	}
	return "", false
}

// Len reports how many entries are stored.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Reset forgets every entry.
func (h *History) Reset() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.entries = h.entries[:0]
	h.mu.Unlock()
}
