package ai

import (
	"sort"
	"sync"
)

// Miss is the last recorded horizontal error of a shooter against one target.
type Miss struct {
	Target string
	// ErrorX is impact x minus target x; positive means the shot landed to the right.
	ErrorX float64
}

// MemoryEntry is one shooter's learning state, used for inspection and replays.
type MemoryEntry struct {
	Shooter string
	Miss    Miss
	// Pending names the target of an in-flight shot, empty when none.
	Pending string
}

// Memory holds what learning profiles know between turns. The engine owns one per match
// and clears it on restart. A nil Memory is valid and remembers nothing.
type Memory struct {
	mu      sync.Mutex
	misses  map[string]Miss
	pending map[string]string
}

// NewMemory returns empty learning state.
func NewMemory() *Memory {
	return &Memory{misses: make(map[string]Miss), pending: make(map[string]string)}
}

// Miss returns the remembered miss for shooter.
func (m *Memory) Miss(shooter string) (Miss, bool) {
	if m == nil {
		return Miss{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	miss, ok := m.misses[shooter]
	return miss, ok
}

// Pending returns the target of shooter's in-flight shot.
func (m *Memory) Pending(shooter string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.pending[shooter]
	return target, ok
}

// Entries lists every shooter with state, sorted by name.
func (m *Memory) Entries() []MemoryEntry {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make(map[string]struct{}, len(m.misses)+len(m.pending))
	for name := range m.misses {
		names[name] = struct{}{}
	}
	for name := range m.pending {
		names[name] = struct{}{}
	}
	out := make([]MemoryEntry, 0, len(names))
	for name := range names {
		out = append(out, MemoryEntry{Shooter: name, Miss: m.misses[name], Pending: m.pending[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shooter < out[j].Shooter })
	return out
}

// Reset forgets everything.
func (m *Memory) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.misses = make(map[string]Miss)
	m.pending = make(map[string]string)
	m.mu.Unlock()
}

func (m *Memory) expect(shooter, target string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.pending[shooter] = target
	m.mu.Unlock()
}

// settle clears the pending shot when it matches target and reports whether it did.
func (m *Memory) settle(shooter, target string) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[shooter]
	if !ok || pending != target {
		return false
	}
	delete(m.pending, shooter)
	return true
}

func (m *Memory) remember(shooter string, miss Miss) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.misses[shooter] = miss
	m.mu.Unlock()
}
