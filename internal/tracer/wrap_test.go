package tracer

import (
	"errors"
	"testing"
	"time"

	"callprof/internal/trace"
)

func TestNativeWrapTiming(t *testing.T) {
	c, _, binder, clk := testController(t)
	fn := nativeFunc{ns: "os", name: "sleep", binding: 1}
	binder.add(1, func(args ...any) (any, error) {
		clk.Advance(2 * time.Millisecond)
		return "done", nil
	})

	c.Enable(fn)
	got, err := binder.call(1)
	if err != nil || got != "done" {
		t.Fatalf("wrapped call = %v, %v", got, err)
	}

	e := c.Results()[trace.BindingIdentity(1)]
	if e.Calls != 1 || e.Total != 2*time.Millisecond {
		t.Fatalf("aggregate = %+v", e.FuncStats)
	}
	if e.Namespace != "os" || e.Name != "sleep" {
		t.Fatalf("naming = %s.%s", e.Namespace, e.Name)
	}
}

func TestNativeWrapIdempotent(t *testing.T) {
	c, _, binder, _ := testController(t)
	fn := nativeFunc{ns: "os", name: "sleep", binding: 1}
	binder.add(1, func(args ...any) (any, error) { return nil, nil })

	c.Enable(fn)
	c.Enable(fn) // repeated enable goes through the update path
	if err := c.UpdateFunctions(fn); err != nil {
		t.Fatalf("UpdateFunctions: %v", err)
	}

	if _, err := binder.call(1); err != nil {
		t.Fatalf("call: %v", err)
	}
	if e := c.Results()[trace.BindingIdentity(1)]; e.Calls != 1 {
		t.Fatalf("double wrapping: one call recorded %d times", e.Calls)
	}
}

func TestNativeRestoreOnDisable(t *testing.T) {
	c, _, binder, _ := testController(t)
	fn := nativeFunc{ns: "os", name: "sleep", binding: 1}

	calls := 0
	orig := func(args ...any) (any, error) {
		calls++
		return nil, nil
	}
	cell := binder.add(1, orig)

	c.Enable(fn)
	if _, err := binder.call(1); err != nil {
		t.Fatalf("wrapped call: %v", err)
	}
	c.Disable()

	if _, err := cell.Load()(); err != nil {
		t.Fatalf("restored call: %v", err)
	}
	if calls != 2 {
		t.Fatalf("original ran %d times, want 2", calls)
	}
	if e := c.Results()[trace.BindingIdentity(1)]; e.Calls != 1 {
		t.Fatalf("post-disable call still recorded: Calls = %d", e.Calls)
	}
}

func TestStaleSubstituteIsPassthrough(t *testing.T) {
	c, _, binder, _ := testController(t)
	fn := nativeFunc{ns: "os", name: "sleep", binding: 1}

	ran := 0
	cell := binder.add(1, func(args ...any) (any, error) {
		ran++
		return 42, nil
	})

	c.Enable(fn)
	stale := cell.Load()
	c.Disable()

	// A call site that grabbed the wrapper before disable must still work,
	// with zero bookkeeping.
	got, err := stale(1, 2)
	if err != nil || got != 42 {
		t.Fatalf("stale wrapper = %v, %v", got, err)
	}
	if ran != 1 {
		t.Fatalf("original ran %d times, want 1", ran)
	}
	if e := c.Results()[trace.BindingIdentity(1)]; e.Calls != 0 {
		t.Fatalf("stale wrapper recorded: Calls = %d", e.Calls)
	}
}

func TestNativeErrorStillRecorded(t *testing.T) {
	c, _, binder, clk := testController(t)
	fn := nativeFunc{ns: "os", name: "read", binding: 1}
	failure := errors.New("device gone")
	binder.add(1, func(args ...any) (any, error) {
		clk.Advance(time.Millisecond)
		return nil, failure
	})

	c.Enable(fn)
	_, err := binder.call(1)
	if !errors.Is(err, failure) {
		t.Fatalf("error not propagated: %v", err)
	}

	e := c.Results()[trace.BindingIdentity(1)]
	if e.Calls != 1 || e.Total != time.Millisecond {
		t.Fatalf("failed call not recorded: %+v", e.FuncStats)
	}
}

func TestNativePanicStillRecorded(t *testing.T) {
	c, _, binder, clk := testController(t)
	fn := nativeFunc{ns: "os", name: "boom", binding: 1}
	binder.add(1, func(args ...any) (any, error) {
		clk.Advance(time.Millisecond)
		panic("native blew up")
	})

	c.Enable(fn)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic swallowed by wrapper")
			}
		}()
		_, _ = binder.call(1)
	}()

	e := c.Results()[trace.BindingIdentity(1)]
	if e.Calls != 1 || e.Total != time.Millisecond {
		t.Fatalf("panicking call not recorded: %+v", e.FuncStats)
	}
}

func TestNativeArgsAndResultPassThrough(t *testing.T) {
	c, _, binder, _ := testController(t)
	fn := nativeFunc{ns: "strings", name: "concat", binding: 1}
	binder.add(1, func(args ...any) (any, error) {
		s := ""
		for _, a := range args {
			s += a.(string)
		}
		return s, nil
	})

	c.Enable(fn)
	got, err := binder.call(1, "a", "b", "c")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "abc" {
		t.Fatalf("result = %v, want abc", got)
	}
}

func TestBindingResolutionFailureSkipsFunction(t *testing.T) {
	c, _, binder, _ := testController(t)
	good := nativeFunc{ns: "os", name: "good", binding: 1}
	bad := nativeFunc{ns: "os", name: "bad", binding: 2}
	binder.add(1, func(args ...any) (any, error) { return nil, nil })
	binder.add(2, func(args ...any) (any, error) { return nil, nil })
	binder.setFail(2, true)

	c.Enable(good, bad)

	if _, err := binder.call(1); err != nil {
		t.Fatalf("call good: %v", err)
	}
	if _, err := binder.call(2); err != nil {
		t.Fatalf("call bad: %v", err)
	}

	snap := c.Results()
	if _, ok := snap[trace.BindingIdentity(1)]; !ok {
		t.Error("resolvable native not wrapped")
	}
	if _, ok := snap[trace.BindingIdentity(2)]; ok {
		t.Error("unresolvable native recorded anyway")
	}
}

func TestRestoreFailureLeavesPassthroughWrapper(t *testing.T) {
	c, _, binder, _ := testController(t)
	fn := nativeFunc{ns: "os", name: "sleep", binding: 1}
	binder.add(1, func(args ...any) (any, error) { return nil, nil })

	c.Enable(fn)
	binder.setFail(1, true)
	c.Disable()

	// The wrapper could not be removed; it must degrade to a passthrough.
	binder.setFail(1, false)
	if _, err := binder.call(1); err != nil {
		t.Fatalf("call through leftover wrapper: %v", err)
	}
	if e := c.Results()[trace.BindingIdentity(1)]; e.Calls != 0 {
		t.Fatalf("leftover wrapper recorded: Calls = %d", e.Calls)
	}

	// A fresh session wraps the binding again from scratch.
	c.Enable(fn)
	if _, err := binder.call(1); err != nil {
		t.Fatalf("call in second session: %v", err)
	}
	if e := c.Results()[trace.BindingIdentity(1)]; e.Calls != 1 {
		t.Fatalf("second session Calls = %d, want 1", e.Calls)
	}
}
