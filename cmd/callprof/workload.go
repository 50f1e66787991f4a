package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"callprof/internal/interp"
	"callprof/internal/profile"
	"callprof/internal/trace"
)

// churnRounds is the inner loop length of the busy demo function.
const churnRounds = 4096

// demoRuntime assembles the hosted program the run and watch commands drive:
// two script functions and a sleeping native, so a trace session has both
// inspectable and opaque callees to account for.
func demoRuntime(p *profile.Profile) *interp.Runtime {
	rt := interp.New()

	var fib *interp.Func
	fib = rt.Define("main", "fib", func(f *interp.Frame, args ...interp.Value) (interp.Value, error) {
		n, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("fib: want int argument, got %T", args[0])
		}
		if n < 2 {
			return n, nil
		}
		a, err := f.Call(fib, n-1)
		if err != nil {
			return nil, err
		}
		b, err := f.Call(fib, n-2)
		if err != nil {
			return nil, err
		}
		return a.(int) + b.(int), nil
	})

	churn := rt.Define("main", "churn", func(f *interp.Frame, args ...interp.Value) (interp.Value, error) {
		rounds, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("churn: want int argument, got %T", args[0])
		}
		acc := 0
		for i := 0; i < rounds; i++ {
			acc = (acc*31 + i) % 1000003
			if i%64 == 0 {
				f.Step()
			}
		}
		return acc, nil
	})

	nap := time.Duration(p.Workload.NapMS) * time.Millisecond
	rt.RegisterNative("clockwork", "nap", func(args ...any) (any, error) {
		d := nap
		if len(args) > 0 {
			if override, ok := args[0].(time.Duration); ok {
				d = override
			}
		}
		time.Sleep(d)
		return nil, nil
	})

	depth := p.Workload.Fib
	rt.Define("main", "main", func(f *interp.Frame, args ...interp.Value) (interp.Value, error) {
		if _, err := f.Call(fib, depth); err != nil {
			return nil, err
		}
		if _, err := f.Call(churn, churnRounds); err != nil {
			return nil, err
		}
		if _, err := f.Native("clockwork", "nap"); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return rt
}

// resolveTraced maps the profile's qualified function names onto runtime
// functions, failing on names the runtime does not know.
func resolveTraced(rt *interp.Runtime, p *profile.Profile) ([]trace.Function, error) {
	fns := make([]trace.Function, 0, len(p.Trace.Functions))
	for _, qualified := range p.Trace.Functions {
		fn, ok := rt.Lookup(qualified)
		if !ok {
			return nil, fmt.Errorf("profile names unknown function %q", qualified)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// runWorkload drives the demo entry function from the configured number of
// workers until every iteration ran or the context is cancelled.
func runWorkload(ctx context.Context, rt *interp.Runtime, p *profile.Profile) error {
	entry, ok := rt.LookupFunc("main", "main")
	if !ok {
		return fmt.Errorf("demo runtime has no entry function")
	}

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Workload.Workers; w++ {
		g.Go(func() error {
			for i := 0; i < p.Workload.Iterations; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if _, err := rt.Call(entry); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// chattyObserver stands in for an external debugger hook: it counts every
// event it sees, so a run can show that tracing chains into it instead of
// displacing it.
type chattyObserver struct {
	events atomic.Uint64
}

func (o *chattyObserver) Observe(trace.Event) trace.Action {
	o.events.Add(1)
	return trace.ActionNone
}
