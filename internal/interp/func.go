package interp

import "callprof/internal/trace"

// Value is the interpreter's dynamic value type.
type Value = any

// Body is the Go implementation of a script function. It runs with the
// activation's frame and may call other functions through it.
type Body func(f *Frame, args ...Value) (Value, error)

// Func is a defined script function. It carries the code identity minted at
// definition time, so aliases of one definition stay one function to an
// observer.
type Func struct {
	ns   string
	name string
	code trace.CodeID
	body Body
}

// Name returns the function's unqualified name.
func (f *Func) Name() string { return f.name }

// Namespace returns the namespace the function was defined in.
func (f *Func) Namespace() string { return f.ns }

// Code returns the identity of the function's body.
func (f *Func) Code() trace.CodeID { return f.code }

// Alias returns a handle to the same body under a different name. The alias
// shares the original's code identity.
func (f *Func) Alias(name string) *Func {
	return &Func{ns: f.ns, name: name, code: f.code, body: f.body}
}

// Native is the handle of a registered native function.
type Native struct {
	ns      string
	name    string
	binding trace.BindingID
}

// Name returns the native's unqualified name.
func (n *Native) Name() string { return n.name }

// Namespace returns the namespace the native was registered in.
func (n *Native) Namespace() string { return n.ns }

// Binding returns the registry binding the runtime dispatches through.
func (n *Native) Binding() trace.BindingID { return n.binding }
