package container

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/4S1ght/depload/internal/graph"
)

type Status string

const (
	StatusStandby      Status = "standby"
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusStopping     Status = "stopping"
	StatusStopped      Status = "stopped"
)

type (
	ServiceHook func(name string, duration time.Duration, err error)
	StatusHook  func(from, to Status)
)

type Config struct {
	Circular bool
	Logger   *zap.Logger
	Tracer   trace.Tracer
	OnStart  []ServiceHook
	OnStop   []ServiceHook
	OnStatus []StatusHook
}

// Container owns the dependency graph and the registry of live instances.
// Start and Stop are not reentrant; callers must not overlap them.
type Container struct {
	mu       sync.RWMutex
	status   Status
	graph    *graph.Graph[Node]
	registry *Registry
	logger   *zap.Logger
	tracer   trace.Tracer

	onStart  []ServiceHook
	onStop   []ServiceHook
	onStatus []StatusHook
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Container{
		status:   StatusStandby,
		graph:    graph.New[Node](graph.Options{Circular: cfg.Circular}),
		registry: NewRegistry(),
		logger:   logger,
		tracer:   tracer,
		onStart:  slices.Clone(cfg.OnStart),
		onStop:   slices.Clone(cfg.OnStop),
		onStatus: slices.Clone(cfg.OnStatus),
	}
}

// Register adds def to the graph. Dependencies that are not known yet get
// an undefined node which a later Register call fills in.
func (c *Container) Register(def Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusStandby && c.status != StatusStopped {
		return serviceError(def.Name, ErrInvalidState, fmt.Errorf("cannot register while %s", c.status))
	}

	if err := validateDefinition(def); err != nil {
		return err
	}

	def.Deps = slices.Clone(def.Deps)
	defined := Node{Defined: true, Definition: def}

	existing, exists := c.graph.NodeData(def.Name)
	switch {
	case exists && existing.Defined:
		return serviceError(def.Name, ErrDuplicate, nil)
	case exists:
		if err := c.graph.SetNodeData(def.Name, defined); err != nil {
			return err
		}
	default:
		if err := c.graph.AddNode(def.Name, defined); err != nil {
			return err
		}
	}

	for _, dep := range def.Deps {
		if !c.graph.HasNode(dep) {
			if err := c.graph.AddNode(dep, Node{}); err != nil {
				return err
			}
		}
		if err := c.graph.AddDependency(def.Name, dep); err != nil {
			return err
		}
	}

	c.logger.Debug("service registered", zap.String("service", def.Name), zap.Strings("deps", def.Deps))
	return nil
}

func validateDefinition(def Definition) error {
	if def.Name == PlaceholderName {
		return serviceError(def.Name, ErrReservedName, nil)
	}
	if def.Name == "" {
		return serviceError(def.Name, ErrInvalidService, fmt.Errorf("name is empty"))
	}
	if def.New == nil {
		return serviceError(def.Name, ErrInvalidService, fmt.Errorf("constructor is nil"))
	}
	for _, dep := range def.Deps {
		switch dep {
		case PlaceholderName:
			return serviceError(def.Name, ErrReservedName, fmt.Errorf("dependency %q", dep))
		case "":
			return serviceError(def.Name, ErrInvalidService, fmt.Errorf("empty dependency name"))
		}
	}
	return nil
}

func (c *Container) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

// transition moves to next when the current status is one of from and
// reports the status it left.
func (c *Container) transition(next Status, from ...Status) (Status, bool) {
	c.mu.Lock()
	prev := c.status
	if len(from) > 0 && !slices.Contains(from, prev) {
		c.mu.Unlock()
		return prev, false
	}
	c.status = next
	c.mu.Unlock()

	c.logger.Debug("status changed", zap.String("from", string(prev)), zap.String("to", string(next)))
	for _, hook := range c.onStatus {
		hook(prev, next)
	}
	return prev, true
}

// Has reports whether a service was registered under name. Names that are
// only referenced as dependencies do not count.
func (c *Container) Has(name string) bool {
	n, ok := c.graph.NodeData(name)
	return ok && n.Defined
}

// Names returns registered services in registration order.
func (c *Container) Names() []string {
	var names []string
	for _, name := range c.graph.Nodes() {
		if c.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

func (c *Container) Size() int {
	return len(c.Names())
}

func (c *Container) Instance(name string) (any, bool) {
	return c.registry.Get(name)
}

func (c *Container) Instances() []string {
	return c.registry.Keys()
}

func (c *Container) Order() ([]string, error) {
	return c.graph.OverallOrder()
}

// Unresolved maps every referenced but unregistered service to the
// services depending on it.
func (c *Container) Unresolved() map[string][]string {
	unresolved := make(map[string][]string)
	for _, name := range c.graph.Nodes() {
		if n, _ := c.graph.NodeData(name); !n.Defined {
			unresolved[name] = c.graph.DependantsOf(name)
		}
	}
	return unresolved
}

// Validate reports unresolved dependencies and, unless cycles are
// tolerated, dependency cycles.
func (c *Container) Validate() error {
	var errs error

	unresolved := c.Unresolved()
	for _, name := range c.graph.Nodes() {
		if dependants, ok := unresolved[name]; ok {
			errs = multierr.Append(errs, unresolvedError(name, dependants))
		}
	}

	if !c.graph.Circular() && c.graph.HasCycle() {
		for _, cycle := range c.graph.DetectCycles() {
			errs = multierr.Append(errs, &graph.CycleError{Path: append(cycle, cycle[0])})
		}
	}

	return errs
}

func unresolvedError(name string, dependants []string) *ServiceError {
	return serviceError(name, ErrUnresolved, fmt.Errorf("required by %s", strings.Join(dependants, ", ")))
}

func (c *Container) Graph() *graph.Graph[Node] {
	return c.graph.Clone()
}
