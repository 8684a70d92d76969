package domain

import (
	"context"
	"fmt"
	"strings"
)

// Function is the uniform signature of every callable the engine can augment.
type Function func(ctx context.Context, args ...any) (any, error)

// Augmentable is implemented by anything that owns named Functions and allows
// them to be replaced in place.
//
// Implementations decide what "in place" means: a function table swaps a map
// entry, a struct adapter assigns a field. Rebind must make the new Function
// visible to every later caller that resolves the name through the owner.
type Augmentable interface {
	// Owner returns the stable name of the namespace (e.g. "billing").
	// Two owners augmented through one registry must not share a name.
	Owner() string
	// Lookup returns the Function currently bound to name.
	Lookup(name string) (Function, error)
	// Rebind replaces the Function bound to name.
	Rebind(name string, fn Function) error
}

// TargetID identifies a callable by its owning namespace and name.
type TargetID struct {
	Owner string `json:"owner" yaml:"owner" mapstructure:"owner"`
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
}

// String renders the target as "owner.name".
func (t TargetID) String() string {
	return t.Owner + "." + t.Name
}

// ParseTargetID parses the "owner.name" form produced by String.
// The owner may itself contain dots; the name is everything after the last one.
func ParseTargetID(s string) (TargetID, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return TargetID{}, fmt.Errorf("invalid target %q: expected owner.name", s)
	}
	return TargetID{Owner: s[:i], Name: s[i+1:]}, nil
}
