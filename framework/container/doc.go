// Package container is a small IoC container with Laravel-style service
// providers, used to assemble an envguard application.
//
// # Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&providers.EnvServiceProvider{})
//  3. Boot: registry.Boot(), after which everything resolves
//  4. Serve requests
//
// # Bindings
//
//	c.Bind("clock", func(c *container.Container) any { return time.Now })      // new value per Make
//	c.Singleton(container.Schema, func(c *container.Container) any { ... })    // built once
//	c.Instance(container.Config, cfg)                                           // pre-built
//	c.Alias(container.Config, "configuration")
//
// # Resolving
//
//	raw := c.Make(container.Validator)
//	v := container.Resolve[*env.Validator](c, container.Validator)
//	m, ok := container.TryResolve[*metrics.Collector](c, container.Metrics)
package container
