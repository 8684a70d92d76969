package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that a Journal implementation
// adheres to the defined interface contract. The journal must start empty and
// retain at least five events.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	event := func(i int, typ domain.EventType) domain.BindingEvent {
		return domain.BindingEvent{
			EventBase: domain.EventBase{
				Timestamp: base.Add(time.Duration(i) * time.Second),
				Type:      typ,
				Target:    domain.TargetID{Owner: "contract", Name: fmt.Sprintf("fn%d", i)},
			},
			Added: domain.HookCounts{Before: i},
			Total: domain.HookCounts{Before: i, Around: 1},
		}
	}

	t.Run("Empty", func(t *testing.T) {
		events, err := journal.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Append and List", func(t *testing.T) {
		require.NoError(t, journal.Append(ctx, event(1, domain.EventAugment)))
		require.NoError(t, journal.Append(ctx, event(2, domain.EventDetach)))
		require.NoError(t, journal.Append(ctx, event(3, domain.EventRestore)))

		events, err := journal.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)

		assert.Equal(t, domain.EventAugment, events[0].Type)
		assert.Equal(t, domain.EventRestore, events[2].Type)
		assert.Equal(t, "fn1", events[0].Target.Name)
		assert.Equal(t, domain.HookCounts{Before: 2, Around: 1}, events[1].Total)
		assert.True(t, events[0].Timestamp.Equal(base.Add(time.Second)))
	})

	t.Run("List Limit", func(t *testing.T) {
		events, err := journal.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "fn2", events[0].Target.Name, "limit keeps the most recent events")
		assert.Equal(t, "fn3", events[1].Target.Name)
	})
}
