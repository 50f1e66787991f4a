package tracer

import (
	"fmt"
	"sync"

	"callprof/internal/trace"
)

// hostSlot is a minimal host-side observer slot.
type hostSlot struct {
	mu   sync.Mutex
	hook trace.Hook
}

func (s *hostSlot) Hook() trace.Hook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hook
}

func (s *hostSlot) SetHook(h trace.Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

// deliver plays one event through the installed hook, the way a host would.
func (s *hostSlot) deliver(ev trace.Event) trace.Action {
	s.mu.Lock()
	h := s.hook
	s.mu.Unlock()
	if h == nil {
		return trace.ActionNone
	}
	return h.Observe(ev)
}

// hostCell is a mutable native binding cell.
type hostCell struct {
	mu sync.Mutex
	fn trace.NativeFunc
}

func (c *hostCell) Load() trace.NativeFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn
}

func (c *hostCell) Store(fn trace.NativeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// hostBinder is a native registry with controllable resolution failures.
type hostBinder struct {
	mu    sync.Mutex
	cells map[trace.BindingID]*hostCell
	fail  map[trace.BindingID]bool
}

func newHostBinder() *hostBinder {
	return &hostBinder{
		cells: make(map[trace.BindingID]*hostCell),
		fail:  make(map[trace.BindingID]bool),
	}
}

func (b *hostBinder) Resolve(id trace.BindingID) (trace.Cell, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail[id] {
		return nil, fmt.Errorf("binding %d unavailable", id)
	}
	cell, ok := b.cells[id]
	if !ok {
		return nil, fmt.Errorf("unknown binding %d", id)
	}
	return cell, nil
}

func (b *hostBinder) add(id trace.BindingID, fn trace.NativeFunc) *hostCell {
	b.mu.Lock()
	defer b.mu.Unlock()
	cell := &hostCell{fn: fn}
	b.cells[id] = cell
	return cell
}

func (b *hostBinder) setFail(id trace.BindingID, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[id] = fail
}

// call dispatches through the cell, the way a host native call site would.
func (b *hostBinder) call(id trace.BindingID, args ...any) (any, error) {
	b.mu.Lock()
	cell, ok := b.cells[id]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown binding %d", id)
	}
	return cell.Load()(args...)
}

// scriptFunc is an instrumented function handle.
type scriptFunc struct {
	ns, name string
	code     trace.CodeID
}

func (f scriptFunc) Name() string       { return f.name }
func (f scriptFunc) Namespace() string  { return f.ns }
func (f scriptFunc) Code() trace.CodeID { return f.code }

// nativeFunc is an opaque function handle.
type nativeFunc struct {
	ns, name string
	binding  trace.BindingID
}

func (f nativeFunc) Name() string             { return f.name }
func (f nativeFunc) Namespace() string        { return f.ns }
func (f nativeFunc) Binding() trace.BindingID { return f.binding }

// plainFunc implements neither extension interface.
type plainFunc struct {
	ns, name string
}

func (f plainFunc) Name() string      { return f.name }
func (f plainFunc) Namespace() string { return f.ns }

// countingHook records every event it sees and answers with a fixed action.
type countingHook struct {
	mu     sync.Mutex
	events []trace.Event
	answer trace.Action
	panics bool
}

func (h *countingHook) Observe(ev trace.Event) trace.Action {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	if h.panics {
		panic("hook gone bad")
	}
	return h.answer
}

func (h *countingHook) seen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}
