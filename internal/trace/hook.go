package trace

// Op represents the kind of execution event a host reports.
type Op uint8

const (
	// OpCall marks entry into a function activation.
	OpCall Op = iota + 1 // activation entry
	// OpReturn marks an activation completing, normally or not.
	OpReturn // activation exit
	// OpStep marks intra-function progress (line/instruction granularity).
	OpStep // intra-function progress
)

// String returns the string representation of Op.
func (o Op) String() string {
	switch o {
	case OpCall:
		return "call"
	case OpReturn:
		return "return"
	case OpStep:
		return "step"
	default:
		return "unknown"
	}
}

// Event is a single execution notification. It carries no timestamp:
// observers that need timing read their own clock at receipt.
type Event struct {
	Op         Op           // event kind
	Code       CodeID       // body being executed
	Activation ActivationID // live invocation the event belongs to
}

// Action is the observer's answer to an event.
type Action uint8

const (
	// ActionNone requests no further detail for the activation.
	ActionNone Action = iota
	// ActionTrace asks the host to keep delivering step and return events
	// for the activation the event belongs to.
	ActionTrace
)

// String returns the string representation of Action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Hook observes execution events. Observe must be goroutine-safe: hosts may
// run activations on many goroutines at once.
type Hook interface {
	Observe(ev Event) Action
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ev Event) Action

// Observe calls f.
func (f HookFunc) Observe(ev Event) Action { return f(ev) }

// Slot is a host's single observer registration point. SetHook replaces the
// occupant outright; see the package documentation for the forwarding
// obligation this puts on installers.
type Slot interface {
	// Hook returns the current occupant, nil when empty.
	Hook() Hook

	// SetHook installs h, displacing any previous occupant. nil clears.
	SetHook(h Hook)
}
