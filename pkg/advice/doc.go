/*
Package advice provides ready-made hooks for common cross-cutting concerns.

Every constructor returns plain domain hooks, so advice composes with
hand-written hooks and can be passed to weaver.Augment through the
weaver.Before, weaver.After, weaver.Around and weaver.Hooks options.

# Available Advice

  - Log: structured call/return logging with log/slog.
  - Time: call latency into a Prometheus histogram or summary.
  - Retry: re-run failing calls with avast/retry-go.
  - Memo: cache successful results in an LRU.
  - Exclusive: serialize a target across processes with a ports.DistributedLocker.
  - Suppress: turn matching errors into a fallback value.
  - Recover: turn panics into errors.
  - Record: hand each invocation to a callback.
*/
package advice
