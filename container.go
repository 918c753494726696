package depload

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/4S1ght/depload/internal/container"
)

const tracerName = "github.com/4S1ght/depload"

type Container struct {
	internal *container.Container
	config   *containerConfig
	id       string
}

type containerConfig struct {
	logger         *zap.Logger
	circular       bool
	tracerProvider trace.TracerProvider
	onStart        []StartHook
	onStop         []StopHook
	onStatus       []StatusHook
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}

	id := uuid.NewString()

	internalCfg := &container.Config{
		Circular: cfg.circular,
		Logger:   cfg.logger.With(zap.String("container", id)),
		Tracer:   cfg.tracerProvider.Tracer(tracerName),
	}
	for _, hook := range cfg.onStart {
		internalCfg.OnStart = append(internalCfg.OnStart, container.ServiceHook(hook))
	}
	for _, hook := range cfg.onStop {
		internalCfg.OnStop = append(internalCfg.OnStop, container.ServiceHook(hook))
	}
	for _, hook := range cfg.onStatus {
		internalCfg.OnStatus = append(internalCfg.OnStatus, container.StatusHook(hook))
	}

	return &Container{
		internal: container.New(internalCfg),
		config:   cfg,
		id:       id,
	}
}

// ID identifies the container in logs.
func (c *Container) ID() string {
	return c.id
}

// Register adds a service definition. Dependencies may be registered later
// in any order; a dependency that is still missing at Start makes Start
// fail with an instantiation error.
func (c *Container) Register(svc Service) error {
	return wrapError(c.internal.Register(container.Definition(svc)))
}

func (c *Container) RegisterAll(svcs ...Service) error {
	for _, svc := range svcs {
		if err := c.Register(svc); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) Status() Status {
	return c.internal.Status()
}

func (c *Container) Has(name string) bool {
	return c.internal.Has(name)
}

func (c *Container) Names() []string {
	return c.internal.Names()
}

func (c *Container) Size() int {
	return c.internal.Size()
}

// Order returns the order Start would construct services in, including
// names that are referenced but not registered.
func (c *Container) Order() ([]string, error) {
	order, err := c.internal.Order()
	return order, wrapError(err)
}

func (c *Container) Validate() error {
	if err := c.internal.Validate(); err != nil {
		return errValidationFailed(wrapError(err))
	}
	return nil
}

func (c *Container) Start(ctx context.Context) error {
	return wrapError(c.internal.Start(ctx))
}

func (c *Container) Stop(ctx context.Context) error {
	return wrapError(c.internal.Stop(ctx))
}

// Run starts the container, blocks until ctx is done or the process gets
// SIGINT or SIGTERM, then stops it.
func (c *Container) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}

	signal.Stop(quit)
	close(quit)

	return c.Stop(context.WithoutCancel(ctx))
}
