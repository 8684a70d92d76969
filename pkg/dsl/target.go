package dsl

import (
	"time"

	"github.com/aretw0/weaver/pkg/plan"
)

// TargetBuilder provides a fluent API for one target's advice.
// Advice is applied in the order it is added.
type TargetBuilder struct {
	target  plan.Target
	builder *Builder
}

// Advice appends an entry of any catalog kind.
func (t *TargetBuilder) Advice(kind string, params map[string]any) *TargetBuilder {
	t.target.Advice = append(t.target.Advice, plan.Advice{Kind: kind, Params: params})
	return t
}

// Log logs every call at level.
func (t *TargetBuilder) Log(level string) *TargetBuilder {
	return t.Advice("log", map[string]any{"level": level})
}

// Time observes call latency.
func (t *TargetBuilder) Time() *TargetBuilder {
	return t.Advice("time", nil)
}

// Retry re-runs failing calls with a fixed delay.
func (t *TargetBuilder) Retry(attempts uint, delay time.Duration) *TargetBuilder {
	return t.Advice("retry", map[string]any{"attempts": attempts, "delay": delay})
}

// Memoize caches up to size successful results.
func (t *TargetBuilder) Memoize(size int) *TargetBuilder {
	return t.Advice("memoize", map[string]any{"size": size})
}

// Suppress returns fallback instead of any error.
func (t *TargetBuilder) Suppress(fallback any) *TargetBuilder {
	return t.Advice("suppress", map[string]any{"fallback": fallback})
}

// Recover turns panics into errors.
func (t *TargetBuilder) Recover() *TargetBuilder {
	return t.Advice("recover", nil)
}

// Exclusive serializes calls under key (the target itself when empty).
func (t *TargetBuilder) Exclusive(key string, ttl time.Duration) *TargetBuilder {
	return t.Advice("exclusive", map[string]any{"key": key, "ttl": ttl})
}

// Target moves on to another target.
func (t *TargetBuilder) Target(owner, name string) *TargetBuilder {
	return t.builder.Target(owner, name)
}

// Build builds the whole plan.
func (t *TargetBuilder) Build() (*plan.Plan, error) {
	return t.builder.Build()
}
