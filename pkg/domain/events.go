package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAugment EventType = "augment"
	EventDetach  EventType = "detach"
	EventRestore EventType = "restore"
	EventInvoke  EventType = "invoke"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Target    TargetID  `json:"target"`
}

// BindingEvent is emitted when a binding is created, extended, trimmed or destroyed.
type BindingEvent struct {
	EventBase
	Added   HookCounts `json:"added"`
	Total   HookCounts `json:"total"`
	Created bool       `json:"created,omitempty"` // first augmentation of the target
}

// InvokeEvent is emitted after every dispatched call.
type InvokeEvent struct {
	EventBase
	InvocationID string        `json:"invocation_id"`
	Duration     time.Duration `json:"duration"`
	Outcome      string        `json:"outcome"`
	Error        string        `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every field is optional.
type LifecycleHooks struct {
	OnAugment func(context.Context, *BindingEvent)
	OnDetach  func(context.Context, *BindingEvent)
	OnRestore func(context.Context, *BindingEvent)
	OnInvoke  func(context.Context, *InvokeEvent)
}

// Chain returns LifecycleHooks that call h first and then other.
func (h LifecycleHooks) Chain(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAugment: chainBinding(h.OnAugment, other.OnAugment),
		OnDetach:  chainBinding(h.OnDetach, other.OnDetach),
		OnRestore: chainBinding(h.OnRestore, other.OnRestore),
		OnInvoke:  chainInvoke(h.OnInvoke, other.OnInvoke),
	}
}

func chainBinding(a, b func(context.Context, *BindingEvent)) func(context.Context, *BindingEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *BindingEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainInvoke(a, b func(context.Context, *InvokeEvent)) func(context.Context, *InvokeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *InvokeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
