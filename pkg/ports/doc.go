/*
Package ports defines the driven ports (interfaces) for the weaver engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to report binding changes to various backends and to coordinate
exclusive execution across processes.

# Key Interfaces

  - Journal: Records augmentation, detach and restoration events (e.g., in Memory or Redis).
  - DistributedLocker: Provides distributed locking, used by the Exclusive advice.
*/
package ports
