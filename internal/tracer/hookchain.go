package tracer

import (
	"time"

	"callprof/internal/trace"
)

// callCtx is one in-flight activation of a traced function.
type callCtx struct {
	id    trace.FuncID
	ns    string
	name  string
	start time.Time
}

// observe is the hook installed into the host's slot. It never panics and
// always forwards the event to the displaced occupant: the previous hook
// keeps seeing the full event stream no matter what the bookkeeping does.
func (c *Controller) observe(ev trace.Event) trace.Action {
	matched := false
	if c.enabled.Load() {
		matched = c.bookkeep(ev)
	}

	prevAct := c.forward(ev)
	if matched {
		return trace.ActionTrace
	}
	return prevAct
}

// bookkeep updates the in-flight table for ev and reports whether the event
// belongs to a traced function. Panics are contained here.
func (c *Controller) bookkeep(ev trace.Event) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("op", ev.Op.String()).Msg("trace bookkeeping failed")
			matched = false
		}
	}()

	switch ev.Op {
	case trace.OpCall:
		return c.openCall(ev)
	case trace.OpReturn:
		return c.closeCall(ev)
	}
	return false
}

// forward delivers ev to the displaced hook. A panicking previous hook is
// logged and treated as answering ActionNone; the chain stays intact.
func (c *Controller) forward(ev trace.Event) (act trace.Action) {
	c.mu.Lock()
	prev := c.prev
	c.mu.Unlock()
	if prev == nil {
		return trace.ActionNone
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("op", ev.Op.String()).Msg("previous trace hook failed")
			act = trace.ActionNone
		}
	}()
	return prev.Observe(ev)
}

// openCall starts timing the activation when its code is in the traced set.
func (c *Controller) openCall(ev trace.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.traced[ev.Code]
	if !ok {
		return false
	}
	c.calls[ev.Activation] = callCtx{
		id:    info.id,
		ns:    info.ns,
		name:  info.name,
		start: c.clock.Now(),
	}
	c.log.Debug().Str("func", info.name).Uint64("activation", uint64(ev.Activation)).Msg("call matched")
	return true
}

// closeCall finishes timing the activation. Returns without a matching call
// context (hook installed mid-call, or an untraced function) are ignored.
func (c *Controller) closeCall(ev trace.Event) bool {
	c.mu.Lock()
	ctx, ok := c.calls[ev.Activation]
	if ok {
		delete(c.calls, ev.Activation)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}

	d := c.clock.Now().Sub(ctx.start)
	c.table.Record(ctx.id, ctx.ns, ctx.name, d)
	c.log.Debug().Str("func", ctx.name).Dur("took", d).Msg("call completed")
	return true
}
