// Package interp is an in-memory function runtime implementing the host
// side of the tracing contract.
//
// Script functions are defined as Go closures over a Frame; each definition
// mints a code identity and every call mints an activation identity. The
// runtime exposes the single observer slot and reports call, return, and
// step events through it, delivering step and return only for activations
// whose call event was answered with ActionTrace.
//
// Native functions live behind binding cells: every dispatch loads the cell,
// so storing a substitute changes behavior process-wide and storing the
// original back undoes it. The runtime's Resolve method hands those cells to
// observers.
//
// The runtime is safe for concurrent root calls from multiple goroutines.
package interp
