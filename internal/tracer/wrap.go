package tracer

import "callprof/internal/trace"

// wrapRecord remembers a substituted binding so the session teardown can put
// the original occupant back.
type wrapRecord struct {
	binding trace.BindingID
	orig    trace.NativeFunc
	ns      string
	name    string
}

// installNativesLocked substitutes a timing wrapper at every session
// native's binding cell. Already wrapped bindings are left alone, and a
// binding that fails to resolve is logged and skipped without aborting the
// rest.
func (c *Controller) installNativesLocked() {
	for id, info := range c.natives {
		if _, done := c.wrapped[id]; done {
			continue
		}

		cell, err := c.binder.Resolve(info.binding)
		if err != nil {
			c.log.Warn().Err(err).Str("func", info.name).Msg("could not wrap native function")
			continue
		}
		orig := cell.Load()
		if orig == nil {
			c.log.Warn().Str("func", info.name).Msg("native binding holds no callable, skipping")
			continue
		}

		cell.Store(c.substitute(id, info, orig))
		c.wrapped[id] = wrapRecord{binding: info.binding, orig: orig, ns: info.ns, name: info.name}
	}
}

// restoreNativesLocked resolves each wrapped binding again and stores the
// original callable back. Resolution failures are logged per binding; the
// wrap table is cleared and the epoch advanced regardless, so a later
// session starts clean and any wrapper left behind goes dormant.
func (c *Controller) restoreNativesLocked() {
	for _, rec := range c.wrapped {
		cell, err := c.binder.Resolve(rec.binding)
		if err != nil {
			c.log.Warn().Err(err).Str("func", rec.name).Msg("could not restore native function")
			continue
		}
		cell.Store(rec.orig)
	}
	c.wrapped = make(map[trace.FuncID]wrapRecord)
	c.wrapEpoch.Add(1)
}

// substitute builds the timing wrapper around orig. While the controller is
// enabled the wrapper records the elapsed time even when orig fails or
// panics; once disabled, or once its install epoch has been torn down, it is
// a plain passthrough. The epoch gate keeps a wrapper that survived a failed
// restore from ever double counting when it later ends up wrapped again.
func (c *Controller) substitute(id trace.FuncID, info funcInfo, orig trace.NativeFunc) trace.NativeFunc {
	ns, name := info.ns, info.name
	epoch := c.wrapEpoch.Load()
	return func(args ...any) (any, error) {
		if !c.enabled.Load() || c.wrapEpoch.Load() != epoch {
			return orig(args...)
		}

		start := c.clock.Now()
		defer func() {
			c.table.Record(id, ns, name, c.clock.Now().Sub(start))
		}()
		return orig(args...)
	}
}
