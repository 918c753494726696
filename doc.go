// Package depload is a small service container that builds named services in
// dependency order and tears them down in reverse.
//
// # Quick Start
//
// Describe services by name and list the names they depend on:
//
//	c := depload.New()
//
//	c.Register(depload.Define("config", func(ctx context.Context, _ depload.Deps) (*Config, error) {
//	    return &Config{DSN: "postgres://localhost/app"}, nil
//	}))
//
//	c.Register(depload.Define("db", func(ctx context.Context, deps depload.Deps) (*DB, error) {
//	    cfg := depload.MustDep[*Config](deps, "config")
//	    return &DB{dsn: cfg.DSN}, nil
//	}, "config"))
//
//	c.Run(ctx)
//
// Registration order does not matter. A service may name a dependency that
// is registered later; if it is never registered, Start fails with an
// instantiation error for it.
//
// # Lifecycle
//
// Start walks the services so that every dependency comes first. For each
// service it calls the constructor with the instances of its dependencies,
// then Init if the instance implements Initializer. Each step finishes before
// the next service is built; nothing runs in parallel.
//
//	func (d *DB) Init(ctx context.Context) error    { return d.connect(ctx) }
//	func (d *DB) Destroy(ctx context.Context) error { return d.pool.Close() }
//
//	c.Start(ctx)  // standby -> initializing -> running
//	c.Stop(ctx)   // running -> stopping -> stopped
//	c.Run(ctx)    // Start + wait for signal + Stop
//
// Stop calls Destroy in exactly the reverse order. A failing destructor does
// not interrupt teardown: every instance is removed and the failures come
// back combined in one error. Calling Stop again is a no-op.
//
// If Start fails, the services built so far stay live and the status stays
// initializing. Call Stop to release them. Start and Register are rejected
// with an invalid state error outside of standby and stopped; definitions
// survive Stop, so a stopped container can be started again.
//
// # Cycles
//
// By default a dependency cycle makes Start fail with a circular dependency
// error. WithCircular(true) builds cyclic services in a deterministic order
// instead; a dependency that is not built yet at that point is left out of
// Deps.
//
// # Errors
//
// All errors are *Error values carrying an ErrorCode. Use errors.Is with the
// exported sentinels or the Is helpers:
//
//	if errors.Is(err, depload.ErrInitializationFailed) { ... }
//	if depload.IsInstantiationFailed(err) { ... }
//
// # Observability
//
// The container logs through zap, traces each Init and Destroy with
// OpenTelemetry, and reports timings to observers:
//
//	obs, _ := depload.NewPrometheusObserver(prometheus.DefaultRegisterer, "app")
//	c := depload.New(append(obs.Options(), depload.WithLogger(logger))...)
//
// # Debug Visualization
//
//	c.PrintGraph()     // table to stdout
//	c.PrintGraphDOT()  // Graphviz DOT to stdout
//	info := c.Graph()  // structured GraphInfo
//
// # Health Checks
//
// Running instances implementing HealthChecker or ReadinessChecker are probed
// by Live, Ready, Health and Readiness.
package depload
