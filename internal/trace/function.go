package trace

// Function is a callable a host exposes for observation. Every handle also
// implements exactly one of Instrumented or Opaque; which one is fixed when
// the host mints the handle.
type Function interface {
	// Name is the function's unqualified name.
	Name() string

	// Namespace is the module or package the function lives in.
	Namespace() string
}

// Instrumented is a function whose body reports through the hook slot.
// Matching happens by code identity, so aliased handles of one body are the
// same function to an observer.
type Instrumented interface {
	Function

	// Code returns the identity of the function's compiled body.
	Code() CodeID
}

// Opaque is a native function with no observable call boundary. The only way
// to time it is to substitute the callable stored at its binding.
type Opaque interface {
	Function

	// Binding returns the registry binding the host dispatches through.
	Binding() BindingID
}

// NativeFunc is the invokable form stored at a native binding cell.
type NativeFunc func(args ...any) (any, error)

// Identity returns the FuncID for fn, or a zero FuncID when fn implements
// neither extension interface.
func Identity(fn Function) FuncID {
	switch f := fn.(type) {
	case Instrumented:
		return CodeIdentity(f.Code())
	case Opaque:
		return BindingIdentity(f.Binding())
	default:
		return FuncID{}
	}
}
