package interp

import (
	"fmt"

	"callprof/internal/trace"
)

// Frame is one activation of a script function. Bodies receive their frame
// and reach the rest of the runtime through it.
type Frame struct {
	rt     *Runtime
	fn     *Func
	act    trace.ActivationID
	depth  int
	traced bool // observer asked for step/return delivery
}

// Activation returns this frame's activation identity.
func (f *Frame) Activation() trace.ActivationID { return f.act }

// Step reports intra-function progress. Nothing is delivered unless the
// observer asked to trace this activation.
func (f *Frame) Step() {
	if !f.traced {
		return
	}
	f.rt.emit(trace.Event{Op: trace.OpStep, Code: f.fn.code, Activation: f.act})
}

// Call invokes another script function one level deeper.
func (f *Frame) Call(callee *Func, args ...Value) (Value, error) {
	return f.rt.call(callee, f.depth+1, args...)
}

// Native dispatches a native function through its binding cell, so whatever
// callable currently occupies the cell runs.
func (f *Frame) Native(ns, name string, args ...Value) (Value, error) {
	n, ok := f.rt.LookupNative(ns, name)
	if !ok {
		return nil, fmt.Errorf("interp: unknown native %s", qualify(ns, name))
	}

	cell, err := f.rt.Resolve(n.binding)
	if err != nil {
		return nil, err
	}
	fn := cell.Load()
	if fn == nil {
		return nil, fmt.Errorf("interp: native %s has no callable", qualify(ns, name))
	}
	return fn(args...)
}
