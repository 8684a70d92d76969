package runtime

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/weaver/pkg/domain"
)

var (
	errNilOwner    = errors.New("nil owner")
	errEmptyOwner  = errors.New("owner has no name")
	errEmptyName   = errors.New("empty target name")
	errNilFunction = errors.New("target is not bound to a function")
	errOwnerClash  = errors.New("another owner with the same name is already augmented")
)

// resolveTarget builds the TargetID for name in owner. Owner() is user code
// and may panic; that is reported as a resolution failure.
func resolveTarget(owner domain.Augmentable, name string) (target domain.TargetID, err error) {
	target.Name = name
	if owner == nil {
		return target, domain.NewResolutionError(target, "lookup", errNilOwner)
	}

	defer func() {
		if p := recover(); p != nil {
			err = domain.NewResolutionError(target, "lookup", fmt.Errorf("panic: %v", p))
		}
	}()

	target.Owner = owner.Owner()
	switch {
	case target.Owner == "":
		return target, domain.NewResolutionError(target, "lookup", errEmptyOwner)
	case name == "":
		return target, domain.NewResolutionError(target, "lookup", errEmptyName)
	}
	return target, nil
}

func safeLookup(owner domain.Augmentable, target domain.TargetID) (fn domain.Function, err error) {
	defer func() {
		if p := recover(); p != nil {
			fn, err = nil, domain.NewResolutionError(target, "lookup", fmt.Errorf("panic: %v", p))
		}
	}()

	fn, err = owner.Lookup(target.Name)
	if err != nil {
		return nil, asResolutionError(target, "lookup", err)
	}
	if fn == nil {
		return nil, domain.NewResolutionError(target, "lookup", errNilFunction)
	}
	return fn, nil
}

func safeRebind(owner domain.Augmentable, target domain.TargetID, fn domain.Function) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = domain.NewResolutionError(target, "rebind", fmt.Errorf("panic: %v", p))
		}
	}()

	if err := owner.Rebind(target.Name, fn); err != nil {
		return asResolutionError(target, "rebind", err)
	}
	return nil
}

func asResolutionError(target domain.TargetID, op string, err error) error {
	var resErr *domain.TargetResolutionError
	if errors.As(err, &resErr) {
		return err
	}
	return domain.NewResolutionError(target, op, err)
}

// adopt checks that owner is the one b wraps and reinstalls the dispatcher
// when the name was rebound outside the registry. Called with Registry.mu held.
func (b *binding) adopt(owner domain.Augmentable) error {
	if !sameOwner(b.owner, owner) {
		return domain.NewResolutionError(b.target, "rebind", errOwnerClash)
	}
	current, err := safeLookup(owner, b.target)
	if err != nil {
		return err
	}
	if sameFunc(current, b.dispatch) {
		return nil
	}
	if err := safeRebind(owner, b.target, b.dispatch); err != nil {
		return err
	}
	b.original = current
	return nil
}

// reinstate puts the original back unless the name no longer points at the
// dispatcher. Called with Registry.mu held.
func (b *binding) reinstate() error {
	if current, err := safeLookup(b.owner, b.target); err == nil && !sameFunc(current, b.dispatch) {
		return nil
	}
	return safeRebind(b.owner, b.target, b.original)
}

// sameOwner compares owners by identity. Owners of uncomparable types never
// match another value.
func sameOwner(a, b domain.Augmentable) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// sameFunc reports whether fn and dispatch share code. Go funcs are not
// comparable, so this matches any dispatcher built by this package.
func sameFunc(fn, dispatch domain.Function) bool {
	return reflect.ValueOf(fn).Pointer() == reflect.ValueOf(dispatch).Pointer()
}
