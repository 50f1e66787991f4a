package trace

import "fmt"

// CodeID identifies a compiled function body. Two handles that alias the
// same body carry the same CodeID, which is what lets observers match events
// regardless of how the function was reached.
type CodeID uint64

// ActivationID identifies one live invocation. Hosts mint these from a
// monotonic counter, so an ID is never reused within a run.
type ActivationID uint64

// BindingID identifies a native function's registry binding (the slot the
// host consults on every native dispatch).
type BindingID uint64

// FuncKind partitions the FuncID space.
type FuncKind uint8

const (
	// KindInstrumented marks identities derived from a CodeID.
	KindInstrumented FuncKind = iota + 1 // code-derived
	// KindOpaque marks identities derived from a BindingID.
	KindOpaque // binding-derived
)

// String returns the string representation of FuncKind.
func (k FuncKind) String() string {
	switch k {
	case KindInstrumented:
		return "instrumented"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// FuncID is the identity observers key per-function state by. The kind tag
// keeps code-derived and binding-derived identities in disjoint spaces, so a
// CodeID and a BindingID with equal numeric values still name two functions.
type FuncID struct {
	Kind FuncKind
	N    uint64
}

// CodeIdentity derives the FuncID for an instrumented function.
func CodeIdentity(c CodeID) FuncID {
	return FuncID{Kind: KindInstrumented, N: uint64(c)}
}

// BindingIdentity derives the FuncID for an opaque function.
func BindingIdentity(b BindingID) FuncID {
	return FuncID{Kind: KindOpaque, N: uint64(b)}
}

// String returns a compact form like "instrumented:42".
func (id FuncID) String() string {
	return fmt.Sprintf("%s:%d", id.Kind, id.N)
}

// IsZero reports whether id is the zero identity (no function).
func (id FuncID) IsZero() bool { return id.Kind == 0 && id.N == 0 }
