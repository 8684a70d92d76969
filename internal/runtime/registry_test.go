package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/weaver/internal/runtime"
	"github.com/aretw0/weaver/internal/testutils"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingNamespace records how often Rebind is called.
type countingNamespace struct {
	*registry.Namespace
	rebinds int
}

func (c *countingNamespace) Rebind(name string, fn domain.Function) error {
	c.rebinds++
	return c.Namespace.Rebind(name, fn)
}

func greetNamespace() *registry.Namespace {
	return registry.New("greetings").Register("greet", func(context.Context, ...any) (any, error) {
		return "hi", nil
	})
}

func greetTarget() domain.TargetID {
	return domain.TargetID{Owner: "greetings", Name: "greet"}
}

func TestRegistry_GreetScenario(t *testing.T) {
	ns := greetNamespace()
	reg := runtime.NewRegistry()
	ctx := context.Background()

	var calls []string
	logCall := func(context.Context, *domain.Invocation) error {
		calls = append(calls, "called")
		return nil
	}

	_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{Before: []domain.Before{logCall}})
	require.NoError(t, err)

	got, err := ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, []string{"called"}, calls)
}

func TestRegistry_RestoreNeverAugmented(t *testing.T) {
	reg := runtime.NewRegistry()

	err := reg.Restore(context.Background(), greetTarget())
	assert.ErrorIs(t, err, domain.ErrNotAugmented)
}

func TestRegistry_BeforeOrderAndOriginal(t *testing.T) {
	rec := &testutils.Recorder{}
	ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
		rec.Add("body")
		return 42, nil
	})
	reg := runtime.NewRegistry()
	ctx := context.Background()

	_, err := reg.Augment(ctx, ns, "run", domain.HookSet{
		Before: []domain.Before{rec.Before("f1"), rec.Before("f2")},
		After:  []domain.After{rec.After("a1"), rec.After("a2")},
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec.Reset()
		got, err := ns.Call(ctx, "run")
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, []string{"f1", "f2", "body", "a1", "a2"}, rec.Events())
	}
}

func TestRegistry_AroundControlsBody(t *testing.T) {
	tests := []struct {
		name      string
		proceeds  int
		wantCalls int
	}{
		{name: "suppress", proceeds: 0, wantCalls: 0},
		{name: "once", proceeds: 1, wantCalls: 1},
		{name: "thrice", proceeds: 3, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyCalls := 0
			ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
				bodyCalls++
				return "body", nil
			})
			reg := runtime.NewRegistry()
			ctx := context.Background()

			around := func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
				for i := 0; i < tt.proceeds; i++ {
					if _, err := proceed(ctx, inv.Args...); err != nil {
						return nil, err
					}
				}
				return "from-around", nil
			}
			_, err := reg.Augment(ctx, ns, "run", domain.HookSet{Around: []domain.Around{around}})
			require.NoError(t, err)

			got, err := ns.Call(ctx, "run")
			require.NoError(t, err)
			assert.Equal(t, "from-around", got)
			assert.Equal(t, tt.wantCalls, bodyCalls)
		})
	}
}

func TestRegistry_AroundNesting(t *testing.T) {
	var order []string
	ns := registry.New("svc").Register("run", func(_ context.Context, args ...any) (any, error) {
		order = append(order, fmt.Sprintf("body%v", args))
		return nil, nil
	})
	reg := runtime.NewRegistry()
	ctx := context.Background()

	layer := func(name string) domain.Around {
		return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
			order = append(order, name+"-in")
			res, err := proceed(ctx, append(inv.Args, name)...)
			order = append(order, name+"-out")
			return res, err
		}
	}
	before := func(context.Context, *domain.Invocation) error {
		order = append(order, "before")
		return nil
	}

	_, err := reg.Augment(ctx, ns, "run", domain.HookSet{Around: []domain.Around{layer("outer")}})
	require.NoError(t, err)
	_, err = reg.Augment(ctx, ns, "run", domain.HookSet{
		Around: []domain.Around{layer("inner")},
		Before: []domain.Before{before},
	})
	require.NoError(t, err)

	_, err = ns.Call(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"outer-in", "inner-in", "before", "body[outer inner]", "inner-out", "outer-out",
	}, order)
}

func TestRegistry_BeforeCanRewriteArgs(t *testing.T) {
	ns := registry.New("math").Register("double", func(_ context.Context, args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})
	reg := runtime.NewRegistry()
	ctx := context.Background()

	_, err := reg.Augment(ctx, ns, "double", domain.HookSet{Before: []domain.Before{
		func(_ context.Context, inv *domain.Invocation) error {
			inv.Args = []any{inv.Args[0].(int) + 1}
			return nil
		},
	}})
	require.NoError(t, err)

	got, err := ns.Call(ctx, "double", 4)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestRegistry_ErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	t.Run("before error aborts", func(t *testing.T) {
		bodyCalled := false
		ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
			bodyCalled = true
			return nil, nil
		})
		reg := runtime.NewRegistry()
		_, err := reg.Augment(ctx, ns, "run", domain.HookSet{Before: []domain.Before{
			func(context.Context, *domain.Invocation) error { return boom },
		}})
		require.NoError(t, err)

		_, err = ns.Call(ctx, "run")
		assert.ErrorIs(t, err, boom)
		assert.False(t, bodyCalled)
	})

	t.Run("after sees original error", func(t *testing.T) {
		ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
			return nil, boom
		})
		reg := runtime.NewRegistry()
		var seen error
		_, err := reg.Augment(ctx, ns, "run", domain.HookSet{After: []domain.After{
			func(_ context.Context, _ *domain.Invocation, _ any, err error) error {
				seen = err
				return errors.New("after failed too")
			},
		}})
		require.NoError(t, err)

		_, err = ns.Call(ctx, "run")
		assert.ErrorIs(t, err, boom, "the original error wins")
		assert.ErrorIs(t, seen, boom)
	})

	t.Run("after error replaces success", func(t *testing.T) {
		ns := greetNamespace()
		reg := runtime.NewRegistry()
		_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{After: []domain.After{
			func(context.Context, *domain.Invocation, any, error) error { return boom },
		}})
		require.NoError(t, err)

		got, err := ns.Call(ctx, "greet")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "hi", got)
	})

	t.Run("around may swallow", func(t *testing.T) {
		ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
			return nil, boom
		})
		reg := runtime.NewRegistry()
		_, err := reg.Augment(ctx, ns, "run", domain.HookSet{Around: []domain.Around{
			func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
				if _, err := proceed(ctx, inv.Args...); err != nil {
					return "fallback", nil
				}
				return "ok", nil
			},
		}})
		require.NoError(t, err)

		got, err := ns.Call(ctx, "run")
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("panics propagate", func(t *testing.T) {
		ns := greetNamespace()
		var outcome string
		reg := runtime.NewRegistry(runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnInvoke: func(_ context.Context, e *domain.InvokeEvent) { outcome = e.Outcome },
		}))
		_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{Before: []domain.Before{
			func(context.Context, *domain.Invocation) error { panic("hook exploded") },
		}})
		require.NoError(t, err)

		assert.PanicsWithValue(t, "hook exploded", func() { _, _ = ns.Call(ctx, "greet") })
		assert.Equal(t, domain.OutcomePanic, outcome)
	})
}

func TestRegistry_RepeatedAugmentDoesNotNest(t *testing.T) {
	ns := &countingNamespace{Namespace: greetNamespace()}
	reg := runtime.NewRegistry()
	ctx := context.Background()

	hits := 0
	hook := domain.HookSet{Before: []domain.Before{func(context.Context, *domain.Invocation) error {
		hits++
		return nil
	}}}

	first, err := reg.Augment(ctx, ns, "greet", hook)
	require.NoError(t, err)
	second, err := reg.Augment(ctx, ns, "greet", hook)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, 1, ns.rebinds)

	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)

	info, ok := reg.Binding(greetTarget())
	require.True(t, ok)
	assert.Equal(t, domain.HookCounts{Before: 2}, info.Hooks)
	assert.Equal(t, 2, info.Handles)
	assert.EqualValues(t, 1, info.Calls)
}

func TestRegistry_RestoreIsIdempotentByBehavior(t *testing.T) {
	ns := greetNamespace()
	reg := runtime.NewRegistry()
	ctx := context.Background()

	_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{Around: []domain.Around{
		func(context.Context, *domain.Invocation, domain.Proceed) (any, error) { return "hijacked", nil },
	}})
	require.NoError(t, err)

	got, _ := ns.Call(ctx, "greet")
	assert.Equal(t, "hijacked", got)

	require.NoError(t, reg.Restore(ctx, greetTarget()))
	got, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, 0, reg.Len())

	err = reg.Restore(ctx, greetTarget())
	assert.ErrorIs(t, err, domain.ErrNotAugmented)
}

func TestRegistry_StaleDispatcherCallsOriginal(t *testing.T) {
	ns := greetNamespace()
	reg := runtime.NewRegistry()
	ctx := context.Background()

	_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{Around: []domain.Around{
		func(context.Context, *domain.Invocation, domain.Proceed) (any, error) { return "hijacked", nil },
	}})
	require.NoError(t, err)

	held, err := ns.Lookup("greet")
	require.NoError(t, err)
	require.NoError(t, reg.Restore(ctx, greetTarget()))

	got, err := held(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestRegistry_Detach(t *testing.T) {
	ns := greetNamespace()
	reg := runtime.NewRegistry()
	ctx := context.Background()

	var order []string
	mark := func(name string) domain.HookSet {
		return domain.HookSet{Before: []domain.Before{func(context.Context, *domain.Invocation) error {
			order = append(order, name)
			return nil
		}}}
	}

	h1, err := reg.Augment(ctx, ns, "greet", mark("one"))
	require.NoError(t, err)
	_, err = reg.Augment(ctx, ns, "greet", mark("two"))
	require.NoError(t, err)

	require.NoError(t, reg.Detach(ctx, h1))
	require.NoError(t, reg.Detach(ctx, h1), "second detach is a no-op")

	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, order)

	require.NoError(t, reg.Restore(ctx, greetTarget()))
	err = reg.Detach(ctx, h1)
	assert.ErrorIs(t, err, domain.ErrNotAugmented)
}

func TestRegistry_LifecycleEvents(t *testing.T) {
	ns := greetNamespace()
	var events []domain.EventType
	var created []bool
	hooks := domain.LifecycleHooks{
		OnAugment: func(_ context.Context, e *domain.BindingEvent) {
			events = append(events, e.Type)
			created = append(created, e.Created)
		},
		OnDetach:  func(_ context.Context, e *domain.BindingEvent) { events = append(events, e.Type) },
		OnRestore: func(_ context.Context, e *domain.BindingEvent) { events = append(events, e.Type) },
		OnInvoke: func(_ context.Context, e *domain.InvokeEvent) {
			events = append(events, e.Type)
			assert.Equal(t, "fixed-id", e.InvocationID)
			assert.Equal(t, domain.OutcomeOK, e.Outcome)
		},
	}
	reg := runtime.NewRegistry(
		runtime.WithLifecycleHooks(hooks),
		runtime.WithIDGenerator(func() string { return "fixed-id" }),
	)
	ctx := context.Background()

	h, err := reg.Augment(ctx, ns, "greet", domain.HookSet{})
	require.NoError(t, err)
	_, err = reg.Augment(ctx, ns, "greet", domain.HookSet{})
	require.NoError(t, err)
	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	require.NoError(t, reg.Detach(ctx, h))
	require.NoError(t, reg.Restore(ctx, greetTarget()))

	assert.Equal(t, []domain.EventType{
		domain.EventAugment, domain.EventAugment, domain.EventInvoke, domain.EventDetach, domain.EventRestore,
	}, events)
	assert.Equal(t, []bool{true, false}, created)
}

func TestRegistry_CloseRestoresEverything(t *testing.T) {
	ns := registry.New("svc").
		Register("a", func(context.Context, ...any) (any, error) { return "a", nil }).
		Register("b", func(context.Context, ...any) (any, error) { return "b", nil })
	reg := runtime.NewRegistry()
	ctx := context.Background()

	hijack := domain.HookSet{Around: []domain.Around{
		func(context.Context, *domain.Invocation, domain.Proceed) (any, error) { return "x", nil },
	}}
	for _, name := range []string{"a", "b"} {
		_, err := reg.Augment(ctx, ns, name, hijack)
		require.NoError(t, err)
	}

	infos := reg.Bindings()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Target.Name)

	require.NoError(t, reg.Close(ctx))
	assert.Equal(t, 0, reg.Len())
	for _, name := range []string{"a", "b"} {
		got, err := ns.Call(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestRegistry_ConcurrentAugmentAndInvoke(t *testing.T) {
	ns := greetNamespace()
	reg := runtime.NewRegistry()
	ctx := context.Background()

	_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h, err := reg.Augment(ctx, ns, "greet", domain.HookSet{Before: []domain.Before{
					func(context.Context, *domain.Invocation) error { return nil },
				}})
				if err == nil {
					_ = reg.Detach(ctx, h)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := ns.Call(ctx, "greet")
				assert.NoError(t, err)
				assert.Equal(t, "hi", got)
			}
		}()
	}
	wg.Wait()

	info, ok := reg.Binding(greetTarget())
	require.True(t, ok)
	assert.Equal(t, 1, info.Handles)
	assert.EqualValues(t, 400, info.Calls)
}

func TestRegistry_RejectsSecondOwnerWithSameName(t *testing.T) {
	reg := runtime.NewRegistry()
	ctx := context.Background()

	var fired []string
	mark := func(name string) domain.HookSet {
		return domain.HookSet{Before: []domain.Before{func(context.Context, *domain.Invocation) error {
			fired = append(fired, name)
			return nil
		}}}
	}
	body := func(context.Context, ...any) (any, error) { return "ok", nil }
	a := registry.New("svc").Register("run", body)
	b := registry.New("svc").Register("run", body)

	_, err := reg.Augment(ctx, a, "run", mark("a"))
	require.NoError(t, err)

	_, err = reg.Augment(ctx, b, "run", mark("b"))
	assert.ErrorIs(t, err, domain.ErrTargetResolution)
	var resErr *domain.TargetResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "rebind", resErr.Op)

	_, err = a.Call(ctx, "run")
	require.NoError(t, err)
	_, err = b.Call(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, fired)

	info, ok := reg.Binding(domain.TargetID{Owner: "svc", Name: "run"})
	require.True(t, ok)
	assert.Equal(t, 1, info.Handles)
}

func TestRegistry_RejectsNilHooks(t *testing.T) {
	tests := []struct {
		name  string
		hooks domain.HookSet
	}{
		{name: "before", hooks: domain.HookSet{Before: []domain.Before{nil}}},
		{name: "after", hooks: domain.HookSet{After: []domain.After{nil}}},
		{name: "around", hooks: domain.HookSet{Around: []domain.Around{nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := &countingNamespace{Namespace: greetNamespace()}
			reg := runtime.NewRegistry()
			ctx := context.Background()

			_, err := reg.Augment(ctx, ns, "greet", tt.hooks)
			assert.ErrorIs(t, err, domain.ErrNilHook)
			assert.Equal(t, 0, reg.Len())
			assert.Equal(t, 0, ns.rebinds)

			got, err := ns.Call(ctx, "greet")
			require.NoError(t, err)
			assert.Equal(t, "hi", got)
		})
	}

	t.Run("existing binding untouched", func(t *testing.T) {
		ns := greetNamespace()
		reg := runtime.NewRegistry()
		ctx := context.Background()

		_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{})
		require.NoError(t, err)
		_, err = reg.Augment(ctx, ns, "greet", domain.HookSet{Before: []domain.Before{nil}})
		assert.ErrorIs(t, err, domain.ErrNilHook)

		info, ok := reg.Binding(greetTarget())
		require.True(t, ok)
		assert.Equal(t, 1, info.Handles)

		_, err = ns.Call(ctx, "greet")
		assert.NoError(t, err)
	})
}

func TestRegistry_ReregisteredName(t *testing.T) {
	v2 := func(context.Context, ...any) (any, error) { return "v2", nil }

	t.Run("augment adopts the new function", func(t *testing.T) {
		ns := greetNamespace()
		reg := runtime.NewRegistry()
		ctx := context.Background()

		_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{})
		require.NoError(t, err)
		ns.Register("greet", v2)

		fired := false
		_, err = reg.Augment(ctx, ns, "greet", domain.HookSet{Before: []domain.Before{
			func(context.Context, *domain.Invocation) error {
				fired = true
				return nil
			},
		}})
		require.NoError(t, err)

		got, err := ns.Call(ctx, "greet")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
		assert.True(t, fired)

		require.NoError(t, reg.Restore(ctx, greetTarget()))
		got, err = ns.Call(ctx, "greet")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
	})

	t.Run("restore keeps the new function", func(t *testing.T) {
		ns := greetNamespace()
		reg := runtime.NewRegistry()
		ctx := context.Background()

		_, err := reg.Augment(ctx, ns, "greet", domain.HookSet{})
		require.NoError(t, err)
		ns.Register("greet", v2)

		require.NoError(t, reg.Restore(ctx, greetTarget()))
		assert.Equal(t, 0, reg.Len())

		got, err := ns.Call(ctx, "greet")
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
	})
}
