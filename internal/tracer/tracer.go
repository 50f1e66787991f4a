package tracer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"callprof/internal/report"
	"callprof/internal/stats"
	"callprof/internal/trace"
)

// ErrNotEnabled is returned by operations that require an active session.
var ErrNotEnabled = errors.New("tracer: not enabled")

// Clock supplies the controller's notion of time. The default reads the
// system clock; tests install a manual one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the controller's time source.
func WithClock(clk Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// funcInfo is the controller's view of one registered function.
type funcInfo struct {
	id      trace.FuncID
	ns      string
	name    string
	code    trace.CodeID    // set for instrumented functions
	binding trace.BindingID // set for opaque functions
}

// Controller traces function calls through a host's hook slot and binding
// registry. All methods are goroutine-safe.
type Controller struct {
	clock Clock
	log   zerolog.Logger

	slot   trace.Slot
	binder trace.Binder

	enabled   atomic.Bool
	wrapEpoch atomic.Uint64 // advanced on every native restore pass

	mu      sync.Mutex
	marked  map[trace.FuncID]funcInfo      // ahead-of-time registrations
	traced  map[trace.CodeID]funcInfo      // session set, instrumented
	natives map[trace.FuncID]funcInfo      // session set, opaque
	wrapped map[trace.FuncID]wrapRecord    // substituted bindings
	calls   map[trace.ActivationID]callCtx // in-flight activations
	prev    trace.Hook                     // displaced slot occupant

	table *stats.Table
}

// New creates a disabled controller for the given host. The statistics table
// lives as long as the controller; only constructing a new controller starts
// from zero.
func New(slot trace.Slot, binder trace.Binder, opts ...Option) *Controller {
	c := &Controller{
		clock:   systemClock{},
		log:     zerolog.Nop(),
		slot:    slot,
		binder:  binder,
		marked:  make(map[trace.FuncID]funcInfo),
		traced:  make(map[trace.CodeID]funcInfo),
		natives: make(map[trace.FuncID]funcInfo),
		wrapped: make(map[trace.FuncID]wrapRecord),
		calls:   make(map[trace.ActivationID]callCtx),
		table:   stats.NewTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mark registers fn ahead of time. Marked functions join every session the
// controller starts; marking takes effect at the next Enable or
// UpdateFunctions, not retroactively.
func (c *Controller) Mark(fn trace.Function) {
	info, ok := describe(fn)
	if !ok {
		c.log.Warn().Str("func", fn.Name()).Msg("function is neither instrumented nor native, not marking")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.marked[info.id] = info
}

// Enable starts a tracing session over the marked functions plus fns.
// Calling Enable while already enabled does not restart the session: with a
// non-empty fns it behaves like UpdateFunctions, otherwise it only logs.
func (c *Controller) Enable(fns ...trace.Function) {
	c.mu.Lock()
	if c.enabled.Load() {
		c.mu.Unlock()
		c.log.Info().Msg("tracing already enabled, updating function set")
		if len(fns) > 0 {
			if err := c.UpdateFunctions(fns...); err != nil {
				c.log.Warn().Err(err).Msg("update after repeated enable failed")
			}
		}
		return
	}
	defer c.mu.Unlock()

	c.traced = make(map[trace.CodeID]funcInfo)
	c.natives = make(map[trace.FuncID]funcInfo)
	for _, info := range c.marked {
		c.adoptLocked(info)
	}
	for _, fn := range fns {
		info, ok := describe(fn)
		if !ok {
			c.log.Warn().Str("func", fn.Name()).Msg("function is neither instrumented nor native, skipping")
			continue
		}
		c.adoptLocked(info)
	}

	c.prev = c.slot.Hook()
	c.slot.SetHook(trace.HookFunc(c.observe))
	c.installNativesLocked()
	c.enabled.Store(true)

	c.log.Info().
		Int("instrumented", len(c.traced)).
		Int("native", len(c.natives)).
		Bool("chained", c.prev != nil).
		Msg("tracing enabled")
}

// Disable stops the session: the displaced hook goes back into the slot
// (even when it was nil), native bindings are restored, and in-flight call
// contexts are dropped. Returns a snapshot of the accumulated statistics;
// when already disabled it only returns the snapshot.
func (c *Controller) Disable() stats.Snapshot {
	c.mu.Lock()
	if !c.enabled.Load() {
		c.mu.Unlock()
		return c.table.Snapshot()
	}

	c.enabled.Store(false)
	c.slot.SetHook(c.prev)
	c.prev = nil
	c.restoreNativesLocked()

	dropped := len(c.calls)
	c.calls = make(map[trace.ActivationID]callCtx)
	c.mu.Unlock()

	ev := c.log.Info()
	if dropped > 0 {
		ev = ev.Int("inflight_dropped", dropped)
	}
	ev.Msg("tracing disabled")
	return c.table.Snapshot()
}

// UpdateFunctions replaces the session's traced set with the marked
// functions plus fns, without touching the hook chain or the statistics.
// Returns ErrNotEnabled when no session is active.
func (c *Controller) UpdateFunctions(fns ...trace.Function) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled.Load() {
		return ErrNotEnabled
	}

	c.restoreNativesLocked()
	c.traced = make(map[trace.CodeID]funcInfo)
	c.natives = make(map[trace.FuncID]funcInfo)
	for _, info := range c.marked {
		c.adoptLocked(info)
	}
	for _, fn := range fns {
		info, ok := describe(fn)
		if !ok {
			c.log.Warn().Str("func", fn.Name()).Msg("function is neither instrumented nor native, skipping")
			continue
		}
		c.adoptLocked(info)
	}
	c.installNativesLocked()

	c.log.Info().
		Int("instrumented", len(c.traced)).
		Int("native", len(c.natives)).
		Msg("traced function set updated")
	return nil
}

// Enabled reports whether a session is active.
func (c *Controller) Enabled() bool { return c.enabled.Load() }

// Results returns a snapshot of the statistics accumulated so far, whether
// or not a session is active.
func (c *Controller) Results() stats.Snapshot {
	return c.table.Snapshot()
}

// FormatResults renders the current statistics as the fixed-width report.
func (c *Controller) FormatResults() string {
	return report.Format(c.table.Snapshot(), report.Options{})
}

// adoptLocked files info into the session set for its kind. Aliased handles
// of one function collapse onto the same key.
func (c *Controller) adoptLocked(info funcInfo) {
	switch info.id.Kind {
	case trace.KindInstrumented:
		c.traced[info.code] = info
	case trace.KindOpaque:
		c.natives[info.id] = info
	}
}

// describe classifies fn and derives its identity. ok is false for handles
// that implement neither extension interface.
func describe(fn trace.Function) (funcInfo, bool) {
	switch f := fn.(type) {
	case trace.Instrumented:
		return funcInfo{
			id:   trace.CodeIdentity(f.Code()),
			ns:   fn.Namespace(),
			name: fn.Name(),
			code: f.Code(),
		}, true
	case trace.Opaque:
		return funcInfo{
			id:      trace.BindingIdentity(f.Binding()),
			ns:      fn.Namespace(),
			name:    fn.Name(),
			binding: f.Binding(),
		}, true
	default:
		return funcInfo{}, false
	}
}
