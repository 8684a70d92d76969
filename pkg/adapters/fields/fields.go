// Package fields exposes the domain.Function fields of a struct as an
// augmentable namespace.
//
// Only exported fields whose type is exactly domain.Function are reachable.
// Anything else is reported as a resolution failure rather than guessed at.
//
//	type Service struct {
//	    Charge domain.Function
//	}
//
//	svc := &Service{Charge: charge}
//	owner, err := fields.Struct("billing", svc)
//	w.Augment(ctx, owner, "Charge", hooks)
package fields

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/weaver/pkg/domain"
)

var (
	ErrNotStructPointer = errors.New("expected a non-nil pointer to struct")
	ErrNoSuchField      = errors.New("no such field")
	ErrUnexportedField  = errors.New("field is not exported")
	ErrNotFunctionField = errors.New("field is not a domain.Function")
)

var functionType = reflect.TypeOf(domain.Function(nil))

// Owner adapts a struct pointer to domain.Augmentable.
type Owner struct {
	name string
	v    reflect.Value // the struct, addressable
}

var _ domain.Augmentable = (*Owner)(nil)

// Struct wraps ptr, which must be a non-nil pointer to a struct.
func Struct(name string, ptr any) (*Owner, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %w (got %T)", name, ErrNotStructPointer, ptr)
	}
	return &Owner{name: name, v: v.Elem()}, nil
}

// Owner returns the namespace name given to Struct.
func (o *Owner) Owner() string {
	return o.name
}

// Lookup returns the current value of the named field.
func (o *Owner) Lookup(name string) (domain.Function, error) {
	f, err := o.field(name)
	if err != nil {
		return nil, err
	}
	fn, _ := f.Interface().(domain.Function)
	return fn, nil
}

// Rebind assigns fn to the named field.
func (o *Owner) Rebind(name string, fn domain.Function) error {
	f, err := o.field(name)
	if err != nil {
		return err
	}
	f.Set(reflect.ValueOf(fn))
	return nil
}

// Functions lists the names of all reachable Function fields.
func (o *Owner) Functions() []string {
	t := o.v.Type()
	var names []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() && sf.Type == functionType {
			names = append(names, sf.Name)
		}
	}
	return names
}

func (o *Owner) field(name string) (reflect.Value, error) {
	sf, ok := o.v.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w", o.name, name, ErrNoSuchField)
	}
	if !sf.IsExported() {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w", o.name, name, ErrUnexportedField)
	}
	if sf.Type != functionType {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w (is %s)", o.name, name, ErrNotFunctionField, sf.Type)
	}
	return o.v.FieldByIndex(sf.Index), nil
}
