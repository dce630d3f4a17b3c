package routing

import (
	"sort"
	"sync"
)

// Model holds the routing matrix the user is editing on screen: which
// MB-76 inputs feed which outputs. It mirrors what the UI shows, not
// what the patchbay relays are actually doing; the hardware never
// reports its state back.
type Model struct {
	mu      sync.RWMutex
	entries map[int]map[int]bool
}

// NewModel creates an empty matrix.
func NewModel() *Model {
	return &Model{entries: make(map[int]map[int]bool)}
}

// Toggle flips a single input/output connection. Toggling the last
// output of an input removes the input's entry entirely, so the matrix
// stays sparse.
func (m *Model) Toggle(input, output int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	outs := m.entries[input]
	if outs == nil {
		outs = make(map[int]bool)
		m.entries[input] = outs
	}
	if outs[output] {
		delete(outs, output)
		if len(outs) == 0 {
			delete(m.entries, input)
		}
		return
	}
	outs[output] = true
}

// Clear removes every connection.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[int]map[int]bool)
}

// LoadFrom replaces the matrix with the given connections, typically a
// preset's stored routing. The input is deep-copied; inputs with no
// outputs are dropped.
func (m *Model) LoadFrom(matrix map[int][]int) {
	entries := make(map[int]map[int]bool, len(matrix))
	for input, outputs := range matrix {
		if len(outputs) == 0 {
			continue
		}
		outs := make(map[int]bool, len(outputs))
		for _, output := range outputs {
			outs[output] = true
		}
		entries[input] = outs
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}

// Snapshot returns a copy of the matrix with output lists sorted
// ascending. The copy shares nothing with the model, so callers can
// hold or mutate it freely.
func (m *Model) Snapshot() map[int][]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matrix := make(map[int][]int, len(m.entries))
	for input, outs := range m.entries {
		outputs := make([]int, 0, len(outs))
		for output := range outs {
			outputs = append(outputs, output)
		}
		sort.Ints(outputs)
		matrix[input] = outputs
	}
	return matrix
}

// RouteCount returns the total number of connections in the matrix.
func (m *Model) RouteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, outs := range m.entries {
		count += len(outs)
	}
	return count
}
