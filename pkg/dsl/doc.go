/*
Package dsl builds augmentation plans in Go instead of YAML, JSON or TOML.

The builder produces the same plan.Plan a file would, so everything that
accepts a plan (plan.Validate, plan.Apply, "weaver inspect") accepts it too.

Example usage:

	p, err := dsl.New().
		Target("greetings", "greet").
		Log("info").
		Retry(3, 10*time.Millisecond).
		Target("greetings", "farewell").
		Suppress("bye").
		Build()
	if err != nil {
		return err
	}
	applied, err := plan.Apply(ctx, w, p, plan.DefaultCatalog(plan.Deps{}), ns)
*/
package dsl
