package container

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/4S1ght/depload/internal/reflect"
)

// Start constructs and initializes every service in dependency order. The
// first failure aborts startup and leaves already built services in the
// registry; Stop tears them down.
func (c *Container) Start(ctx context.Context) error {
	if prev, ok := c.transition(StatusInitializing, StatusStandby, StatusStopped); !ok {
		return serviceError("container", ErrInvalidState, fmt.Errorf("cannot start while %s", prev))
	}

	started := time.Now()

	order, err := c.graph.OverallOrder()
	if err != nil {
		c.logger.Error("failed to determine startup order", zap.Error(err))
		return err
	}

	for _, name := range order {
		if err := c.startService(ctx, name); err != nil {
			c.logger.Error("startup aborted", zap.String("service", name), zap.Error(err))
			return err
		}
	}

	c.transition(StatusRunning)
	c.logger.Info("container started", zap.Int("services", len(order)), zap.Duration("duration", time.Since(started)))
	return nil
}

func (c *Container) startService(ctx context.Context, name string) error {
	ctx, span := c.tracer.Start(
		ctx, "depload.init",
		trace.WithAttributes(attribute.String("depload.service", name)),
	)
	defer span.End()

	start := time.Now()
	err := c.construct(ctx, name)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		c.logger.Debug("service started", zap.String("service", name), zap.Duration("duration", duration))
	}

	for _, hook := range c.onStart {
		hook(name, duration, err)
	}
	return err
}

func (c *Container) construct(ctx context.Context, name string) error {
	n, _ := c.graph.NodeData(name)
	if !n.Defined {
		return unresolvedError(name, c.graph.DependantsOf(name))
	}

	instance, err := n.Definition.New(ctx, c.inject(n.Definition))
	if err != nil {
		return serviceError(name, ErrConstruct, err)
	}
	if reflect.IsNil(instance) {
		return serviceError(name, ErrConstruct, fmt.Errorf("constructor returned nil"))
	}

	if init, ok := instance.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			return serviceError(name, ErrInit, err)
		}
	}

	c.registry.Set(name, instance)
	return nil
}

// inject collects the instances of def's dependencies. With cycles
// tolerated a dependency may not be built yet; it is left out.
func (c *Container) inject(def Definition) Deps {
	names := make([]string, 0, len(def.Deps))
	values := make(map[string]any, len(def.Deps))

	for _, dep := range def.Deps {
		if slices.Contains(names, dep) {
			continue
		}
		instance, ok := c.registry.Get(dep)
		if !ok {
			c.logger.Warn(
				"dependency not constructed yet, skipping injection",
				zap.String("service", def.Name), zap.String("dependency", dep),
			)
			continue
		}
		names = append(names, dep)
		values[dep] = instance
	}

	return NewDeps(names, values)
}

// Stop destroys live instances in reverse construction order. A failing
// destructor does not stop the teardown; all failures are combined into the
// returned error. Stopping a container that is not started is a no-op.
func (c *Container) Stop(ctx context.Context) error {
	if _, ok := c.transition(StatusStopping, StatusRunning, StatusInitializing); !ok {
		return nil
	}

	started := time.Now()

	order, err := c.graph.ReverseOrder()
	if err != nil {
		order = c.registry.Keys()
		slices.Reverse(order)
	}

	var errs error
	for _, name := range order {
		instance, ok := c.registry.Get(name)
		if !ok {
			continue
		}
		errs = multierr.Append(errs, c.stopService(ctx, name, instance))
	}

	if n := c.registry.Size(); n != 0 {
		c.logger.Warn("instances left after teardown, dropping them", zap.Int("count", n))
		c.registry.Clear()
	}

	c.transition(StatusStopped)

	if errs != nil {
		c.logger.Warn("container stopped with errors", zap.Error(errs), zap.Duration("duration", time.Since(started)))
		return errs
	}
	c.logger.Info("container stopped", zap.Duration("duration", time.Since(started)))
	return nil
}

func (c *Container) stopService(ctx context.Context, name string, instance any) error {
	ctx, span := c.tracer.Start(
		ctx, "depload.destroy",
		trace.WithAttributes(attribute.String("depload.service", name)),
	)
	defer span.End()

	start := time.Now()

	var err error
	if d, ok := instance.(Destructor); ok {
		if derr := d.Destroy(ctx); derr != nil {
			err = serviceError(name, ErrDestroy, derr)
			span.RecordError(derr)
			span.SetStatus(codes.Error, derr.Error())
			c.logger.Error("destructor failed", zap.String("service", name), zap.Error(derr))
		}
	}

	c.registry.Remove(name)
	duration := time.Since(start)

	for _, hook := range c.onStop {
		hook(name, duration, err)
	}
	return err
}
