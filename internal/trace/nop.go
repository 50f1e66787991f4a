package trace

// nopHook ignores every event.
type nopHook struct{}

// Observe does nothing and never requests deep tracing.
func (nopHook) Observe(Event) Action { return ActionNone }

// NopHook is the package-level singleton no-op hook.
var NopHook Hook = nopHook{}
