package trace

// Cell is the mutable slot a native binding dispatches through. Load and
// Store must be goroutine-safe; hosts call Load on every native dispatch.
type Cell interface {
	Load() NativeFunc
	Store(fn NativeFunc)
}

// Binder resolves a binding to its cell. Resolution can fail after the host
// unloads a namespace, so callers treat errors as per-binding, not fatal.
type Binder interface {
	Resolve(b BindingID) (Cell, error)
}
