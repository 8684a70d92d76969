package weaver_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/pkg/adapters/fields"
	"github.com/aretw0/weaver/pkg/adapters/memory"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greetings() *registry.Namespace {
	return registry.New("greetings").Register("greet", func(context.Context, ...any) (any, error) {
		return "hi", nil
	})
}

func TestFacade_GreetScenario(t *testing.T) {
	ns := greetings()
	w := weaver.New()
	ctx := context.Background()

	var shared []string
	logCall := func(context.Context, *domain.Invocation) error {
		shared = append(shared, "called")
		return nil
	}

	handle, err := w.Augment(ctx, ns, "greet", weaver.Before(logCall))
	require.NoError(t, err)
	assert.Equal(t, domain.TargetID{Owner: "greetings", Name: "greet"}, handle.Target)

	got, err := ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, []string{"called"}, shared)

	require.NoError(t, w.Restore(ctx, handle.Target))
	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []string{"called"}, shared, "restored target no longer runs hooks")
}

func TestFacade_HookOptionsCombine(t *testing.T) {
	ns := greetings()
	w := weaver.New()
	ctx := context.Background()

	var order []string
	before := func(name string) domain.Before {
		return func(context.Context, *domain.Invocation) error {
			order = append(order, name)
			return nil
		}
	}

	_, err := w.Augment(ctx, ns, "greet",
		weaver.Before(before("f1"), before("f2")),
		weaver.Hooks(domain.HookSet{Before: []domain.Before{before("f3")}}),
		weaver.After(func(_ context.Context, _ *domain.Invocation, result any, _ error) error {
			order = append(order, "after:"+result.(string))
			return nil
		}),
		weaver.Around(func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
			order = append(order, "around")
			return proceed(ctx, inv.Args...)
		}),
	)
	require.NoError(t, err)

	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []string{"around", "f1", "f2", "f3", "after:hi"}, order)
}

func TestFacade_RestoreUnknown(t *testing.T) {
	w := weaver.New()
	err := w.Restore(context.Background(), domain.TargetID{Owner: "x", Name: "y"})
	assert.ErrorIs(t, err, domain.ErrNotAugmented)
}

func TestFacade_JournalAndHooks(t *testing.T) {
	ns := greetings()
	journal := memory.NewJournal(0)
	var invoked int
	w := weaver.New(
		weaver.WithJournal(journal),
		weaver.WithLifecycleHooks(domain.LifecycleHooks{
			OnInvoke: func(context.Context, *domain.InvokeEvent) { invoked++ },
		}),
	)
	ctx := context.Background()

	handle, err := w.Augment(ctx, ns, "greet")
	require.NoError(t, err)
	_, err = ns.Call(ctx, "greet")
	require.NoError(t, err)
	require.NoError(t, w.Detach(ctx, handle))
	require.NoError(t, w.Restore(ctx, handle.Target))

	events, err := journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventAugment, events[0].Type)
	assert.True(t, events[0].Created)
	assert.Equal(t, domain.EventDetach, events[1].Type)
	assert.Equal(t, domain.EventRestore, events[2].Type)
	assert.Equal(t, 1, invoked)
}

func TestFacade_LogsBindingChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	w := weaver.New(weaver.WithLogger(logger))
	ctx := context.Background()

	handle, err := w.Augment(ctx, greetings(), "greet")
	require.NoError(t, err)
	require.NoError(t, w.Restore(ctx, handle.Target))

	_, err = w.Augment(ctx, registry.New("empty"), "missing")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "target augmented")
	assert.Contains(t, out, "target=greetings.greet")
	assert.Contains(t, out, "target restored")
	assert.Contains(t, out, "augment failed")
}

func TestFacade_RejectsNilHook(t *testing.T) {
	ns := greetings()
	w := weaver.New()
	ctx := context.Background()

	_, err := w.Augment(ctx, ns, "greet", weaver.Before(nil))
	assert.ErrorIs(t, err, domain.ErrNilHook)
	assert.Empty(t, w.Bindings())

	got, err := ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestFacade_StructFields(t *testing.T) {
	type billing struct {
		Charge domain.Function
	}
	svc := &billing{Charge: func(_ context.Context, args ...any) (any, error) {
		return args[0].(int) * 100, nil
	}}
	owner, err := fields.Struct("billing", svc)
	require.NoError(t, err)

	w := weaver.New()
	ctx := context.Background()
	undo, err := w.Weave(ctx, owner, "Charge", weaver.Around(
		func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
			res, err := proceed(ctx, inv.Args...)
			if err != nil {
				return nil, err
			}
			return res.(int) + 1, nil
		},
	))
	require.NoError(t, err)

	got, err := svc.Charge(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 301, got)

	require.NoError(t, undo(ctx))
	got, err = svc.Charge(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 300, got)
	assert.Empty(t, w.Bindings())
}

func TestFacade_CloseRestores(t *testing.T) {
	ns := greetings()
	w := weaver.New()
	ctx := context.Background()

	_, err := w.Augment(ctx, ns, "greet", weaver.Around(
		func(context.Context, *domain.Invocation, domain.Proceed) (any, error) { return "bye", nil },
	))
	require.NoError(t, err)
	require.Len(t, w.Bindings(), 1)

	require.NoError(t, w.Close(ctx))
	got, err := ns.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, weaver.Version)
}
