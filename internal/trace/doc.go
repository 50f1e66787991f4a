// Package trace defines the contract between a host runtime and call
// observers such as the tracer controller.
//
// The host owns function execution; observers watch it through a single
// process-wide hook slot. The package deliberately contains no bookkeeping:
// it is the boundary vocabulary (events, identities, function handles,
// binding cells) that both sides agree on.
//
// # Hook slot
//
// A host exposes exactly one observer slot. Installing a hook is not
// additive: whoever installs must read the previous occupant first and
// forward events to it, otherwise that observer silently stops working.
//
//	prev := slot.Hook()
//	slot.SetHook(trace.HookFunc(func(ev trace.Event) trace.Action {
//		// own bookkeeping, then:
//		if prev != nil {
//			return prev.Observe(ev)
//		}
//		return trace.ActionNone
//	}))
//
// # Identity
//
// Three identity spaces, all minted by the host:
//
//   - CodeID: a compiled function body. Aliases and wrappers share it.
//   - ActivationID: one live invocation. Never reused within a run.
//   - BindingID: a native function's registry binding.
//
// Observers key their own state by FuncID, which partitions code-derived and
// binding-derived identities so the two spaces cannot collide.
//
// # Functions
//
// A Function handle is either Instrumented (its body emits hook events) or
// Opaque (native, no observable boundary; timing requires substituting the
// binding cell). The classification is fixed: a handle implements one of the
// two extension interfaces, decided by the host when it minted the handle.
//
// # Bindings
//
// Natives are reached through mutable cells resolved by a Binder. Overwriting
// a cell is reversible via the same lookup, which lets an observer install a
// timing substitute and later restore the original.
package trace
