/*
Package weaver is a method interception engine: it attaches before, after and
around hooks to existing functions without changing how callers invoke them.

It is a Go rendition of "classical" aspect-oriented programming. A target is a
named Function owned by an Augmentable namespace. Augmenting a target swaps it,
at its point of definition, for a dispatcher that runs the registered hooks
around the original. Restoring the target puts the original back.

# Concept

Targets opt in. Nothing is patched through reflection over arbitrary values:
a namespace implements domain.Augmentable (Owner, Lookup, Rebind) and the
engine only ever reads and writes Functions through it. The registry package
provides a ready-made function table; the fields adapter exposes the
domain.Function fields of a struct.

Dispatch order for a call:

  - Around hooks, first registered outermost. Each decides whether and how
    many times to proceed.
  - Inside the innermost around layer (or directly, when there are none):
    Before hooks in registration order, the original, After hooks in
    registration order.

Hook errors and panics are never swallowed by the engine. The only errors it
creates itself are domain.ErrNotAugmented and domain.TargetResolutionError.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/weaver"
		"github.com/aretw0/weaver/pkg/domain"
		"github.com/aretw0/weaver/pkg/registry"
	)

	func main() {
		ns := registry.New("greetings").
			Register("greet", func(ctx context.Context, args ...any) (any, error) {
				return "hi", nil
			})

		w := weaver.New()
		defer w.Close(context.Background())

		ctx := context.Background()
		handle, err := w.Augment(ctx, ns, "greet",
			weaver.Before(func(ctx context.Context, inv *domain.Invocation) error {
				fmt.Println("called", inv.Target)
				return nil
			}),
		)
		if err != nil {
			log.Fatal(err)
		}

		out, _ := ns.Call(ctx, "greet") // prints "called greetings.greet"
		fmt.Println(out)                // hi

		// Put the original back.
		if err := w.Restore(ctx, handle.Target); err != nil {
			log.Fatal(err)
		}
	}

# Advice and Plans

Package advice ships hooks for common concerns (logging, timing, retries,
memoization, locking, error suppression). Package plan applies advice from a
YAML, JSON or TOML file, and package dsl builds the same plans in Go.
*/
package weaver
