/*
Package observability exports the registry's lifecycle as Prometheus metrics.

Metrics.Hooks returns domain.LifecycleHooks, so wiring it is one option:

	m := observability.NewMetrics()
	prometheus.MustRegister(m)
	w := weaver.New(weaver.WithLifecycleHooks(m.Hooks()))

The collectors are:

  - weaver_bindings: live bindings (gauge).
  - weaver_augmentations_total: successful Augment calls.
  - weaver_detaches_total: successful Detach calls.
  - weaver_restorations_total: restored targets.
  - weaver_invocations_total{owner,name,outcome}: dispatched calls.
  - weaver_invocation_duration_seconds{owner,name}: dispatch latency.
*/
package observability
