package container

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/4S1ght/depload/internal/graph"
)

type recorder struct {
	constructed []string
	initialized []string
	destroyed   []string
}

type recordedService struct {
	name    string
	rec     *recorder
	deps    Deps
	initErr error
	stopErr error
}

func (s *recordedService) Init(ctx context.Context) error {
	s.rec.initialized = append(s.rec.initialized, s.name)
	return s.initErr
}

func (s *recordedService) Destroy(ctx context.Context) error {
	s.rec.destroyed = append(s.rec.destroyed, s.name)
	return s.stopErr
}

func define(rec *recorder, name string, deps ...string) Definition {
	return Definition{
		Name: name,
		Deps: deps,
		New: func(ctx context.Context, d Deps) (any, error) {
			rec.constructed = append(rec.constructed, name)
			return &recordedService{name: name, rec: rec, deps: d}, nil
		},
	}
}

func newTestContainer(circular bool) *Container {
	return New(&Config{Circular: circular})
}

func TestContainer_Register(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(false)

	if err := c.Register(define(rec, "b", "a")); err != nil {
		t.Fatalf("forward reference should register: %v", err)
	}

	if c.Has("a") {
		t.Error("a is only referenced and should not count as registered")
	}
	if !c.Has("b") {
		t.Error("b should be registered")
	}

	unresolved := c.Unresolved()
	if !slices.Equal(unresolved["a"], []string{"b"}) {
		t.Errorf("expected a to be required by b, got %v", unresolved)
	}

	if err := c.Register(define(rec, "a")); err != nil {
		t.Fatalf("promoting a placeholder should succeed: %v", err)
	}
	if len(c.Unresolved()) != 0 {
		t.Errorf("expected nothing unresolved, got %v", c.Unresolved())
	}

	if !slices.Equal(c.Names(), []string{"b", "a"}) {
		t.Errorf("unexpected names %v", c.Names())
	}
}

func TestContainer_RegisterErrors(t *testing.T) {
	t.Parallel()

	rec := &recorder{}

	tests := []struct {
		name    string
		prepare []Definition
		def     Definition
		kind    error
	}{
		{
			name: "reserved name",
			def:  define(rec, PlaceholderName),
			kind: ErrReservedName,
		},
		{
			name: "reserved dependency name",
			def:  define(rec, "a", PlaceholderName),
			kind: ErrReservedName,
		},
		{
			name:    "duplicate",
			prepare: []Definition{define(rec, "a")},
			def:     define(rec, "a"),
			kind:    ErrDuplicate,
		},
		{
			name: "empty name",
			def:  define(rec, ""),
			kind: ErrInvalidService,
		},
		{
			name: "nil constructor",
			def:  Definition{Name: "a"},
			kind: ErrInvalidService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestContainer(false)
			for _, def := range tt.prepare {
				if err := c.Register(def); err != nil {
					t.Fatalf("prepare: %v", err)
				}
			}

			err := c.Register(tt.def)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}

			var se *ServiceError
			if !errors.As(err, &se) || se.Service != tt.def.Name {
				t.Errorf("expected service error for %q, got %v", tt.def.Name, err)
			}
		})
	}
}

func TestContainer_StartStop(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(true)

	for _, def := range []Definition{
		define(rec, "test3", "test2", "test1"),
		define(rec, "test1"),
		define(rec, "test2", "test1"),
	} {
		if err := c.Register(def); err != nil {
			t.Fatalf("register %s: %v", def.Name, err)
		}
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := []string{"test1", "test2", "test3"}
	if !slices.Equal(rec.constructed, want) {
		t.Errorf("construction order: expected %v, got %v", want, rec.constructed)
	}
	if !slices.Equal(rec.initialized, want) {
		t.Errorf("init order: expected %v, got %v", want, rec.initialized)
	}
	if !slices.Equal(c.Instances(), want) {
		t.Errorf("registry order: expected %v, got %v", want, c.Instances())
	}

	instance, _ := c.Instance("test3")
	test3 := instance.(*recordedService)
	test1, _ := c.Instance("test1")
	test2, _ := c.Instance("test2")

	if !slices.Equal(test3.deps.Names(), []string{"test2", "test1"}) {
		t.Errorf("unexpected injected names %v", test3.deps.Names())
	}
	if got, _ := test3.deps.Get("test1"); got != test1 {
		t.Error("test1 should be injected into test3")
	}
	if got, _ := test3.deps.Get("test2"); got != test2 {
		t.Error("test2 should be injected into test3")
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if !slices.Equal(rec.destroyed, []string{"test3", "test2", "test1"}) {
		t.Errorf("destroy order: got %v", rec.destroyed)
	}
	if len(c.Instances()) != 0 {
		t.Errorf("registry should be empty after stop, got %v", c.Instances())
	}
	if c.Status() != StatusStopped {
		t.Errorf("expected stopped, got %s", c.Status())
	}
}

func TestContainer_StopDropsStrayInstances(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(false)
	if err := c.Register(define(rec, "a")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	c.registry.Set("stray", struct{}{})

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if c.registry.Size() != 0 {
		t.Errorf("registry should be empty after stop, got %v", c.Instances())
	}
	if !slices.Equal(rec.destroyed, []string{"a"}) {
		t.Errorf("destroy order: got %v", rec.destroyed)
	}
}

func TestContainer_StatusTransitions(t *testing.T) {
	t.Parallel()

	var transitions []Status
	c := New(
		&Config{
			OnStatus: []StatusHook{
				func(from, to Status) { transitions = append(transitions, to) },
			},
		},
	)

	if c.Status() != StatusStandby {
		t.Fatalf("expected standby, got %s", c.Status())
	}

	_ = c.Register(define(&recorder{}, "a"))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	want := []Status{StatusInitializing, StatusRunning, StatusStopping, StatusStopped}
	if !slices.Equal(transitions, want) {
		t.Errorf("expected %v, got %v", want, transitions)
	}
}

func TestContainer_StateGuards(t *testing.T) {
	t.Parallel()

	c := newTestContainer(false)
	_ = c.Register(define(&recorder{}, "a"))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := c.Start(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second start should fail with ErrInvalidState, got %v", err)
	}
	if err := c.Register(define(&recorder{}, "b")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("register while running should fail with ErrInvalidState, got %v", err)
	}

	_ = c.Stop(context.Background())

	if err := c.Register(define(&recorder{}, "b")); err != nil {
		t.Errorf("register after stop should succeed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Errorf("restart after stop should succeed: %v", err)
	}
	if len(c.Instances()) != 2 {
		t.Errorf("expected 2 instances after restart, got %v", c.Instances())
	}
}

func TestContainer_StopBeforeStart(t *testing.T) {
	t.Parallel()

	c := newTestContainer(false)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop on standby should be a no-op: %v", err)
	}
	if c.Status() != StatusStandby {
		t.Errorf("expected standby, got %s", c.Status())
	}
}

func TestContainer_StartUnresolved(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(false)
	_ = c.Register(define(rec, "b", "a"))

	err := c.Start(context.Background())
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}

	var se *ServiceError
	if !errors.As(err, &se) || se.Service != "a" {
		t.Errorf("expected error for service a, got %v", err)
	}
	if len(rec.constructed) != 0 {
		t.Errorf("nothing should be constructed, got %v", rec.constructed)
	}
	if c.Status() != StatusInitializing {
		t.Errorf("failed start should stay initializing, got %s", c.Status())
	}
}

func TestContainer_StartInitFailure(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(false)
	boom := errors.New("boom")

	_ = c.Register(define(rec, "a"))
	_ = c.Register(
		Definition{
			Name: "b",
			Deps: []string{"a"},
			New: func(ctx context.Context, d Deps) (any, error) {
				rec.constructed = append(rec.constructed, "b")
				return &recordedService{name: "b", rec: rec, initErr: boom}, nil
			},
		},
	)
	_ = c.Register(define(rec, "c", "b"))

	err := c.Start(context.Background())
	if !errors.Is(err, ErrInit) || !errors.Is(err, boom) {
		t.Fatalf("expected init failure wrapping boom, got %v", err)
	}

	if !slices.Equal(rec.constructed, []string{"a", "b"}) {
		t.Errorf("c should not be constructed, got %v", rec.constructed)
	}
	if !slices.Equal(c.Instances(), []string{"a"}) {
		t.Errorf("only a should be live, got %v", c.Instances())
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
	if !slices.Equal(rec.destroyed, []string{"a"}) {
		t.Errorf("expected a to be destroyed, got %v", rec.destroyed)
	}
}

func TestContainer_StartConstructorFailure(t *testing.T) {
	t.Parallel()

	c := newTestContainer(false)
	_ = c.Register(
		Definition{
			Name: "a",
			New: func(ctx context.Context, d Deps) (any, error) {
				return nil, errors.New("no database")
			},
		},
	)

	if err := c.Start(context.Background()); !errors.Is(err, ErrConstruct) {
		t.Fatalf("expected ErrConstruct, got %v", err)
	}
}

func TestContainer_StopCollectsDestructorErrors(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := newTestContainer(false)

	failing := func(name string, deps ...string) Definition {
		return Definition{
			Name: name,
			Deps: deps,
			New: func(ctx context.Context, d Deps) (any, error) {
				return &recordedService{name: name, rec: rec, stopErr: errors.New(name + " stuck")}, nil
			},
		}
	}

	_ = c.Register(define(rec, "a"))
	_ = c.Register(failing("b", "a"))
	_ = c.Register(failing("c", "b"))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := c.Stop(context.Background())
	if !errors.Is(err, ErrDestroy) {
		t.Fatalf("expected ErrDestroy, got %v", err)
	}
	if !slices.Equal(rec.destroyed, []string{"c", "b", "a"}) {
		t.Errorf("teardown should continue past failures, got %v", rec.destroyed)
	}
	if len(c.Instances()) != 0 {
		t.Errorf("failed instances should still be removed, got %v", c.Instances())
	}
	if c.Status() != StatusStopped {
		t.Errorf("expected stopped, got %s", c.Status())
	}
}

func TestContainer_Cycle(t *testing.T) {
	t.Parallel()

	t.Run("not tolerated", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		c := newTestContainer(false)
		_ = c.Register(define(rec, "A", "B"))
		_ = c.Register(define(rec, "B", "A"))

		err := c.Start(context.Background())
		if !errors.Is(err, graph.ErrCycleDetected) {
			t.Fatalf("expected cycle error, got %v", err)
		}
		if len(rec.constructed) != 0 {
			t.Errorf("nothing should be constructed, got %v", rec.constructed)
		}
		if err := c.Validate(); !errors.Is(err, graph.ErrCycleDetected) {
			t.Errorf("validate should report the cycle, got %v", err)
		}
	})

	t.Run("tolerated", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		c := newTestContainer(true)
		_ = c.Register(define(rec, "A", "B"))
		_ = c.Register(define(rec, "B", "A"))

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("start: %v", err)
		}
		if !slices.Equal(rec.constructed, []string{"B", "A"}) {
			t.Errorf("unexpected order %v", rec.constructed)
		}

		b, _ := c.Instance("B")
		if b.(*recordedService).deps.Len() != 0 {
			t.Error("B is built first and cannot see A")
		}
		a, _ := c.Instance("A")
		if got, _ := a.(*recordedService).deps.Get("B"); got != b {
			t.Error("A should receive B")
		}
		if err := c.Validate(); err != nil {
			t.Errorf("validate should accept tolerated cycles, got %v", err)
		}
	})
}

func TestContainer_Hooks(t *testing.T) {
	t.Parallel()

	var started, stopped []string
	c := New(
		&Config{
			OnStart: []ServiceHook{
				func(name string, _ time.Duration, _ error) { started = append(started, name) },
			},
			OnStop: []ServiceHook{
				func(name string, _ time.Duration, _ error) { stopped = append(stopped, name) },
			},
		},
	)

	rec := &recorder{}
	_ = c.Register(define(rec, "b", "a"))
	_ = c.Register(define(rec, "a"))

	_ = c.Start(context.Background())
	_ = c.Stop(context.Background())

	if !slices.Equal(started, []string{"a", "b"}) {
		t.Errorf("unexpected start hooks %v", started)
	}
	if !slices.Equal(stopped, []string{"b", "a"}) {
		t.Errorf("unexpected stop hooks %v", stopped)
	}
}

func TestContainer_Validate(t *testing.T) {
	t.Parallel()

	c := newTestContainer(false)
	_ = c.Register(define(&recorder{}, "b", "a", "x"))

	err := c.Validate()
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if err.Error() == "" {
		t.Error("expected a message")
	}
}
