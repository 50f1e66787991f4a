package interp

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"callprof/internal/trace"
)

// maxDepth bounds script recursion before the runtime refuses to go deeper.
const maxDepth = 10000

// cell is one native binding's mutable dispatch slot.
type cell struct {
	mu sync.RWMutex
	fn trace.NativeFunc
}

func (c *cell) Load() trace.NativeFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fn
}

func (c *cell) Store(fn trace.NativeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// Runtime executes script functions and dispatches natives through binding
// cells. It implements both host capabilities observers need: the observer
// slot and the binding resolver.
type Runtime struct {
	hookMu sync.RWMutex
	hook   trace.Hook

	mu      sync.Mutex
	funcs   map[string]*Func
	natives map[string]*Native
	cells   map[trace.BindingID]*cell

	nextCode    atomic.Uint64
	nextBinding atomic.Uint64
	nextAct     atomic.Uint64
}

// New creates an empty runtime with a vacant observer slot.
func New() *Runtime {
	return &Runtime{
		funcs:   make(map[string]*Func),
		natives: make(map[string]*Native),
		cells:   make(map[trace.BindingID]*cell),
	}
}

// Hook returns the current observer slot occupant, nil when vacant.
func (rt *Runtime) Hook() trace.Hook {
	rt.hookMu.RLock()
	defer rt.hookMu.RUnlock()
	return rt.hook
}

// SetHook installs h as the observer, displacing any previous occupant.
func (rt *Runtime) SetHook(h trace.Hook) {
	rt.hookMu.Lock()
	defer rt.hookMu.Unlock()
	rt.hook = h
}

// Resolve returns the binding's dispatch cell.
func (rt *Runtime) Resolve(b trace.BindingID) (trace.Cell, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	c, ok := rt.cells[b]
	if !ok {
		return nil, fmt.Errorf("interp: unknown binding %d", b)
	}
	return c, nil
}

// Define registers a script function and mints its code identity. Defining
// an existing name rebinds it to the new body under a fresh identity.
func (rt *Runtime) Define(ns, name string, body Body) *Func {
	fn := &Func{
		ns:   ns,
		name: name,
		code: trace.CodeID(rt.nextCode.Add(1)),
		body: body,
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.funcs[qualify(ns, name)] = fn
	return fn
}

// RegisterNative registers a native function. Registering an existing name
// stores the new callable into the same binding cell.
func (rt *Runtime) RegisterNative(ns, name string, fn trace.NativeFunc) *Native {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	key := qualify(ns, name)
	if n, ok := rt.natives[key]; ok {
		rt.cells[n.binding].Store(fn)
		return n
	}

	n := &Native{ns: ns, name: name, binding: trace.BindingID(rt.nextBinding.Add(1))}
	rt.natives[key] = n
	rt.cells[n.binding] = &cell{fn: fn}
	return n
}

// LookupFunc finds a script function by namespace and name.
func (rt *Runtime) LookupFunc(ns, name string) (*Func, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fn, ok := rt.funcs[qualify(ns, name)]
	return fn, ok
}

// LookupNative finds a native handle by namespace and name.
func (rt *Runtime) LookupNative(ns, name string) (*Native, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n, ok := rt.natives[qualify(ns, name)]
	return n, ok
}

// Lookup resolves a qualified "namespace.name" to a function handle, script
// or native. The name is everything after the last dot.
func (rt *Runtime) Lookup(qualified string) (trace.Function, bool) {
	ns, name := splitQualified(qualified)
	if fn, ok := rt.LookupFunc(ns, name); ok {
		return fn, true
	}
	if n, ok := rt.LookupNative(ns, name); ok {
		return n, true
	}
	return nil, false
}

// Call roots a new activation of fn.
func (rt *Runtime) Call(fn *Func, args ...Value) (Value, error) {
	return rt.call(fn, 0, args...)
}

func (rt *Runtime) call(fn *Func, depth int, args ...Value) (Value, error) {
	if fn == nil {
		return nil, fmt.Errorf("interp: call of nil function")
	}
	if depth >= maxDepth {
		return nil, fmt.Errorf("interp: call depth limit (%d) in %s", maxDepth, qualify(fn.ns, fn.name))
	}

	act := trace.ActivationID(rt.nextAct.Add(1))
	f := &Frame{rt: rt, fn: fn, act: act, depth: depth}

	if rt.emit(trace.Event{Op: trace.OpCall, Code: fn.code, Activation: act}) == trace.ActionTrace {
		f.traced = true
		defer rt.emit(trace.Event{Op: trace.OpReturn, Code: fn.code, Activation: act})
	}
	return fn.body(f, args...)
}

// emit delivers ev to the slot occupant. The slot lock is not held across
// the observer call.
func (rt *Runtime) emit(ev trace.Event) trace.Action {
	rt.hookMu.RLock()
	h := rt.hook
	rt.hookMu.RUnlock()
	if h == nil {
		return trace.ActionNone
	}
	return h.Observe(ev)
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

func splitQualified(qualified string) (ns, name string) {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return "", qualified
	}
	return qualified[:idx], qualified[idx+1:]
}
