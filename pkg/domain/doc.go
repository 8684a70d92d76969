/*
Package domain contains the core models of the weaver interception engine.

It defines what a target is, the shape of the hooks that can be attached to it,
and the events emitted while targets are augmented, invoked and restored. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Function: The uniform call signature every augmentable callable exposes.
  - Augmentable: A namespace (object, table, struct) that owns named Functions
    and lets the engine swap them in place.
  - TargetID: The stable identity of a callable (owner + name).
  - HookSet: The ordered Before, After and Around hooks of a target.
  - Invocation: A single call flowing through the hooks.
*/
package domain
