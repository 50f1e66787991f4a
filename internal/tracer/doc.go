// Package tracer measures wall time of selected functions executed by a
// host runtime and aggregates per-function statistics.
//
// # Controller
//
// A Controller is the explicit handle for one tracing concern. It owns the
// statistics table for its whole lifetime: disabling returns a snapshot but
// never clears, so repeated sessions accumulate.
//
//	ctl := tracer.New(host, host)
//	ctl.Enable(fns...)
//	// ... run workload ...
//	snap := ctl.Disable()
//
// # Hook chain
//
// The host has a single observer slot. Enable captures the current occupant
// (a debugger, another tracer, nil) and installs its own hook, which does
// its bookkeeping and then forwards every event to the captured occupant.
// Failures on either side are recovered and logged: a broken previous hook
// cannot stop tracing, and broken bookkeeping cannot starve the previous
// hook. Disable puts the captured occupant back, even when it was nil.
//
// # Instrumented vs opaque functions
//
// Instrumented functions are matched by code identity against call events
// and timed between call and return. Opaque (native) functions never emit
// events; the controller times them by substituting the callable stored at
// their binding cell with a timing wrapper. Substitution is idempotent per
// identity, reversed on disable by resolving the same binding again, and a
// wrapper left in place after disable degrades to a plain passthrough.
package tracer
