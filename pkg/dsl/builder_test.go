package dsl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/pkg/dsl"
	"github.com/aretw0/weaver/pkg/plan"
	"github.com/aretw0/weaver/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Order(t *testing.T) {
	p, err := dsl.New().
		Target("greetings", "greet").
		Log("info").
		Retry(3, time.Millisecond).
		Target("greetings", "farewell").
		Suppress("bye").
		Target("greetings", "greet").
		Recover().
		Build()
	require.NoError(t, err)

	require.Len(t, p.Targets, 2)
	assert.Equal(t, "greet", p.Targets[0].Name)
	assert.Equal(t, "farewell", p.Targets[1].Name)

	var kinds []string
	for _, a := range p.Targets[0].Advice {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []string{"log", "retry", "recover"}, kinds, "resumed targets append")
}

func TestBuilder_RejectsIncompleteTargets(t *testing.T) {
	_, err := dsl.New().Target("", "greet").Target("greetings", "").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target 0")
	assert.Contains(t, err.Error(), "target 1")
}

func TestBuilder_ValidatesAndApplies(t *testing.T) {
	var calls int
	ns := registry.New("svc").Register("run", func(context.Context, ...any) (any, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return calls, nil
	})

	p, err := dsl.New().
		Target("svc", "run").
		Exclusive("", time.Second).
		Retry(2, time.Millisecond).
		Memoize(4).
		Build()
	require.NoError(t, err)

	catalog := plan.DefaultCatalog(plan.Deps{})
	require.NoError(t, plan.Validate(p, catalog), "native Go params decode like file params")

	w := weaver.New()
	applied, err := plan.Apply(context.Background(), w, p, catalog, ns)
	require.NoError(t, err)
	defer applied.Undo(context.Background())

	for i := 0; i < 3; i++ {
		got, err := ns.Call(context.Background(), "run")
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	}
	assert.Equal(t, 2, calls)
}
