package weaver

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/internal/runtime"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
)

// Weaver is the high-level entry point for the library.
// It wraps the internal runtime registry and provides a simplified API for consumers.
type Weaver struct {
	registry *runtime.Registry
	hooks    domain.LifecycleHooks
	journal  ports.Journal
	logger   *slog.Logger
	idGen    func() string
	clock    func() time.Time
}

// Option defines a functional option for configuring the Weaver.
type Option func(*Weaver)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once chains the hooks in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Weaver) {
		w.hooks = w.hooks.Chain(hooks)
	}
}

// WithJournal records every augment, detach and restore event.
func WithJournal(j ports.Journal) Option {
	return func(w *Weaver) {
		w.journal = j
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Weaver) {
		w.logger = logger
	}
}

// WithIDGenerator overrides how invocation IDs are produced (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(w *Weaver) {
		w.idGen = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Weaver) {
		w.clock = now
	}
}

// New initializes a Weaver. Each Weaver owns its bindings; call Close to
// restore every target it augmented.
func New(opts ...Option) *Weaver {
	w := &Weaver{}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logging.NewNop()
	}

	hooks := w.hooks
	if w.journal != nil {
		hooks = hooks.Chain(w.journalHooks())
	}

	w.registry = runtime.NewRegistry(
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(w.logger),
		runtime.WithIDGenerator(w.idGen),
		runtime.WithClock(w.clock),
	)
	return w
}

func (w *Weaver) journalHooks() domain.LifecycleHooks {
	record := func(ctx context.Context, e *domain.BindingEvent) {
		if err := w.journal.Append(ctx, *e); err != nil {
			w.logger.Warn("journal append failed",
				"target", e.Target.String(),
				"event", string(e.Type),
				"error", err,
			)
		}
	}
	return domain.LifecycleHooks{
		OnAugment: record,
		OnDetach:  record,
		OnRestore: record,
	}
}

// HookOption adds hooks to an augmentation.
type HookOption func(*domain.HookSet)

// Before adds hooks that run ahead of the original, in the given order.
func Before(hooks ...domain.Before) HookOption {
	return func(s *domain.HookSet) {
		s.Before = append(s.Before, hooks...)
	}
}

// After adds hooks that run once the original returned, in the given order.
func After(hooks ...domain.After) HookOption {
	return func(s *domain.HookSet) {
		s.After = append(s.After, hooks...)
	}
}

// Around adds hooks that wrap the call. The first one is the outermost layer.
func Around(hooks ...domain.Around) HookOption {
	return func(s *domain.HookSet) {
		s.Around = append(s.Around, hooks...)
	}
}

// Hooks adds a prepared HookSet.
func Hooks(set domain.HookSet) HookOption {
	return func(s *domain.HookSet) {
		*s = s.Merge(set)
	}
}

func buildHookSet(opts []HookOption) domain.HookSet {
	var set domain.HookSet
	for _, opt := range opts {
		opt(&set)
	}
	return set
}

// Augment attaches hooks to the Function bound to name in owner and replaces
// it in place with a dispatcher. Augmenting an already wrapped target appends
// to its hooks.
func (w *Weaver) Augment(ctx context.Context, owner domain.Augmentable, name string, opts ...HookOption) (domain.Handle, error) {
	handle, err := w.registry.Augment(ctx, owner, name, buildHookSet(opts))
	if err != nil {
		w.logger.Warn("augment failed", "name", name, "error", err)
		return domain.Handle{}, err
	}
	w.logger.Info("target augmented", "target", handle.Target.String(), "created", handle.Created)
	return handle, nil
}

// Detach removes the hooks added by one Augment call.
func (w *Weaver) Detach(ctx context.Context, handle domain.Handle) error {
	return w.registry.Detach(ctx, handle)
}

// Restore reinstates the original Function of target.
// It returns domain.ErrNotAugmented if the target was never wrapped.
func (w *Weaver) Restore(ctx context.Context, target domain.TargetID) error {
	if err := w.registry.Restore(ctx, target); err != nil {
		return err
	}
	w.logger.Info("target restored", "target", target.String())
	return nil
}

// UndoFunc reverts a Weave.
type UndoFunc func(ctx context.Context) error

// Weave augments a target for a scope. Undo detaches the hooks and, if this
// weave created the binding and nothing else is attached, restores the target.
//
//	undo, err := w.Weave(ctx, ns, "charge", weaver.Before(audit))
//	if err != nil {
//		return err
//	}
//	defer undo(ctx)
func (w *Weaver) Weave(ctx context.Context, owner domain.Augmentable, name string, opts ...HookOption) (UndoFunc, error) {
	undo, err := w.registry.Weave(ctx, owner, name, buildHookSet(opts))
	if err != nil {
		return nil, err
	}
	return UndoFunc(undo), nil
}

// Binding returns a snapshot of the binding for target.
func (w *Weaver) Binding(target domain.TargetID) (domain.BindingInfo, bool) {
	return w.registry.Binding(target)
}

// Bindings returns snapshots of every live binding, ordered by target.
func (w *Weaver) Bindings() []domain.BindingInfo {
	return w.registry.Bindings()
}

// Close restores every target augmented through this Weaver.
func (w *Weaver) Close(ctx context.Context) error {
	return w.registry.Close(ctx)
}
