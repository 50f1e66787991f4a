// Package stats accumulates per-function call statistics for the tracer.
package stats

import (
	"sync"
	"time"

	"callprof/internal/trace"
)

// FuncStats aggregates completed calls of one function.
type FuncStats struct {
	Calls uint64        // completed call count
	Total time.Duration // summed wall time
	Min   time.Duration // fastest call
	Max   time.Duration // slowest call
}

// Add folds one completed call into the aggregate.
func (s *FuncStats) Add(d time.Duration) {
	if s.Calls == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Calls++
	s.Total += d
}

// Avg returns the mean call duration, 0 when no calls completed.
func (s FuncStats) Avg() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Entry is one function's aggregate plus the naming captured at record time.
type Entry struct {
	Namespace string
	Name      string
	FuncStats
}

// Snapshot is a point-in-time copy of the table. Mutating it does not affect
// the live table.
type Snapshot map[trace.FuncID]Entry

// Table is the live, goroutine-safe statistics store. Entries materialize on
// the first recorded sample and are never removed; the table survives
// tracing sessions and is cleared only by constructing a new one.
type Table struct {
	mu      sync.Mutex
	entries map[trace.FuncID]*Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[trace.FuncID]*Entry)}
}

// Record folds one completed call of the identified function. The namespace
// and name stick from the first sample.
func (t *Table) Record(id trace.FuncID, ns, name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[id]
	if e == nil {
		e = &Entry{Namespace: ns, Name: name}
		t.entries[id] = e
	}
	e.Add(d)
}

// Snapshot copies the current aggregates.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(Snapshot, len(t.entries))
	for id, e := range t.entries {
		out[id] = *e
	}
	return out
}

// Len returns the number of functions with at least one completed call.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
