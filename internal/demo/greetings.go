// Package demo provides the sample namespace served by "weaver serve".
package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/weaver/pkg/registry"
)

// Owner is the name of the demo namespace.
const Owner = "greetings"

// ErrUnlucky is returned by "flaky" on roughly a third of its calls.
var ErrUnlucky = errors.New("unlucky")

// Greetings returns a fresh namespace with three functions:
//
//   - greet(name): "hi" or "hi <name>"
//   - farewell(): always fails, a target for suppress advice
//   - flaky(): fails at random, a target for retry advice
func Greetings() *registry.Namespace {
	return registry.New(Owner).
		Register("greet", func(_ context.Context, args ...any) (any, error) {
			if len(args) == 0 {
				return "hi", nil
			}
			return fmt.Sprintf("hi %v", args[0]), nil
		}).
		Register("farewell", func(context.Context, ...any) (any, error) {
			return nil, errors.New("no goodbyes today")
		}).
		Register("flaky", func(context.Context, ...any) (any, error) {
			if rand.IntN(3) == 0 {
				return nil, ErrUnlucky
			}
			return "ok", nil
		})
}
