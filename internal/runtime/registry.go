package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/google/uuid"
)

// binding is the live association between a target and its hooks.
// All fields except calls are guarded by Registry.mu.
type binding struct {
	target   domain.TargetID
	owner    domain.Augmentable
	original domain.Function
	dispatch domain.Function
	entries  []entry
	set      domain.HookSet // merged view of entries, replaced on change
	since    time.Time
	restored bool
	calls    atomic.Uint64
}

// entry is the slice of hooks contributed by one Augment call.
type entry struct {
	id    uint64
	hooks domain.HookSet
}

func (b *binding) rebuild() {
	var set domain.HookSet
	for _, e := range b.entries {
		set = set.Merge(e.hooks)
	}
	b.set = set
}

func (b *binding) info() domain.BindingInfo {
	return domain.BindingInfo{
		Target:  b.target,
		Hooks:   b.set.Counts(),
		Handles: len(b.entries),
		Since:   b.since,
		Calls:   b.calls.Load(),
	}
}

// Registry owns every binding and dispatches calls through their hooks.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[domain.TargetID]*binding
	seq      uint64

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// Option configures the Registry.
type Option func(*Registry)

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithLogger sets the logger used for binding changes.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator overrides how invocation IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings: make(map[domain.TargetID]*binding),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Augment attaches hooks to the Function bound to name in owner.
//
// The first augmentation of a target captures the original Function and
// rebinds the name to a dispatcher. Later augmentations append to the same
// hook set; the dispatcher is never nested. If the name was rebound outside
// the registry since, the new Function becomes the original and the
// dispatcher is reinstalled.
//
// Hook sets containing nil hooks are rejected with domain.ErrNilHook. A
// different owner reporting the same Owner() name as a live binding is a
// TargetResolutionError.
func (r *Registry) Augment(ctx context.Context, owner domain.Augmentable, name string, hooks domain.HookSet) (domain.Handle, error) {
	target, err := resolveTarget(owner, name)
	if err != nil {
		return domain.Handle{}, err
	}
	if err := hooks.Validate(); err != nil {
		return domain.Handle{}, fmt.Errorf("augment %s: %w", target, err)
	}

	r.mu.Lock()
	b, exists := r.bindings[target]
	if exists {
		if err := b.adopt(owner); err != nil {
			r.mu.Unlock()
			return domain.Handle{}, err
		}
	} else {
		original, err := safeLookup(owner, target)
		if err != nil {
			r.mu.Unlock()
			return domain.Handle{}, err
		}
		b = &binding{
			target:   target,
			owner:    owner,
			original: original,
			since:    r.now(),
		}
		b.dispatch = r.dispatcher(b)
		if err := safeRebind(owner, target, b.dispatch); err != nil {
			r.mu.Unlock()
			return domain.Handle{}, err
		}
		r.bindings[target] = b
	}

	r.seq++
	handle := domain.Handle{Target: target, ID: r.seq, Created: !exists}
	b.entries = append(b.entries, entry{id: handle.ID, hooks: hooks})
	b.rebuild()
	event := r.bindingEvent(domain.EventAugment, b, hooks.Counts())
	event.Created = !exists
	r.mu.Unlock()

	r.logger.Debug("target augmented",
		"target", target.String(),
		"created", !exists,
		"before", event.Total.Before,
		"after", event.Total.After,
		"around", event.Total.Around,
	)
	if r.hooks.OnAugment != nil {
		r.hooks.OnAugment(ctx, event)
	}
	return handle, nil
}

// Detach removes the hooks added by the augmentation identified by handle.
// The target stays wrapped even when its hook set becomes empty.
// Detaching the same handle twice is a no-op.
func (r *Registry) Detach(ctx context.Context, handle domain.Handle) error {
	_, err := r.detach(ctx, handle)
	return err
}

// detach reports whether handle still had hooks attached to a live binding.
func (r *Registry) detach(ctx context.Context, handle domain.Handle) (bool, error) {
	r.mu.Lock()
	b, ok := r.bindings[handle.Target]
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("detach %s: %w", handle.Target, domain.ErrNotAugmented)
	}

	var removed domain.HookCounts
	kept := b.entries[:0:0]
	for _, e := range b.entries {
		if e.id == handle.ID {
			removed = e.hooks.Counts()
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == len(b.entries) {
		r.mu.Unlock()
		return false, nil
	}
	b.entries = kept
	b.rebuild()
	event := r.bindingEvent(domain.EventDetach, b, removed)
	r.mu.Unlock()

	r.logger.Debug("hooks detached", "target", handle.Target.String(), "handle", handle.ID)
	if r.hooks.OnDetach != nil {
		r.hooks.OnDetach(ctx, event)
	}
	return true, nil
}

// Restore reinstates the original Function of target and destroys its binding.
// It fails with domain.ErrNotAugmented when the target has no binding.
func (r *Registry) Restore(ctx context.Context, target domain.TargetID) error {
	_, err := r.restore(ctx, target, false)
	return err
}

// restore rebinds the original Function. With onlyIdle set, a binding that
// still carries hooks is left untouched and restored reports false.
// A name rebound outside the registry keeps its current Function; only the
// binding is dropped.
func (r *Registry) restore(ctx context.Context, target domain.TargetID, onlyIdle bool) (bool, error) {
	r.mu.Lock()
	b, ok := r.bindings[target]
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("restore %s: %w", target, domain.ErrNotAugmented)
	}
	if onlyIdle && len(b.entries) > 0 {
		r.mu.Unlock()
		return false, nil
	}
	if err := b.reinstate(); err != nil {
		r.mu.Unlock()
		return false, err
	}
	b.restored = true
	delete(r.bindings, target)
	event := r.bindingEvent(domain.EventRestore, b, domain.HookCounts{})
	r.mu.Unlock()

	r.logger.Debug("target restored", "target", target.String(), "calls", b.calls.Load())
	if r.hooks.OnRestore != nil {
		r.hooks.OnRestore(ctx, event)
	}
	return true, nil
}

// Close restores every live binding. Errors are joined.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.RLock()
	targets := make([]domain.TargetID, 0, len(r.bindings))
	for t := range r.bindings {
		targets = append(targets, t)
	}
	r.mu.RUnlock()

	var errs []error
	for _, t := range targets {
		if err := r.Restore(ctx, t); err != nil && !errors.Is(err, domain.ErrNotAugmented) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Binding returns a snapshot of the binding for target, if any.
func (r *Registry) Binding(target domain.TargetID) (domain.BindingInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[target]
	if !ok {
		return domain.BindingInfo{}, false
	}
	return b.info(), true
}

// Bindings returns snapshots of all live bindings ordered by target.
func (r *Registry) Bindings() []domain.BindingInfo {
	r.mu.RLock()
	infos := make([]domain.BindingInfo, 0, len(r.bindings))
	for _, b := range r.bindings {
		infos = append(infos, b.info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Target.String() < infos[j].Target.String()
	})
	return infos
}

// Len returns the number of live bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

func (r *Registry) bindingEvent(t domain.EventType, b *binding, delta domain.HookCounts) *domain.BindingEvent {
	return &domain.BindingEvent{
		EventBase: domain.EventBase{
			Timestamp: r.now(),
			Type:      t,
			Target:    b.target,
		},
		Added: delta,
		Total: b.set.Counts(),
	}
}
