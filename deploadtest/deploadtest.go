// Package deploadtest provides helpers for testing code built on depload.
package deploadtest

import (
	"context"
	"slices"
	"sync"

	"github.com/4S1ght/depload"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*depload.Container
	tb TB
}

// New returns a container that is stopped when the test finishes.
func New(tb TB, opts ...depload.Option) *TestContainer {
	tb.Helper()

	c := depload.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := c.Stop(context.Background()); err != nil {
			tb.Fatalf("failed to stop container: %v", err)
		}
	})

	return tc
}

func (tc *TestContainer) RequireStart(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Start(ctx); err != nil {
		tc.tb.Fatalf("failed to start container: %v", err)
	}
}

func (tc *TestContainer) RequireStop(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Stop(ctx); err != nil {
		tc.tb.Fatalf("failed to stop container: %v", err)
	}
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	if err := tc.Validate(); err != nil {
		tc.tb.Fatalf("container validation failed: %v", err)
	}
}

func (tc *TestContainer) MustRegister(svcs ...depload.Service) {
	tc.tb.Helper()

	for _, svc := range svcs {
		if err := tc.Register(svc); err != nil {
			tc.tb.Fatalf("failed to register %s: %v", svc.Name, err)
		}
	}
}

func (tc *TestContainer) AssertStatus(want depload.Status) {
	tc.tb.Helper()

	if got := tc.Status(); got != want {
		tc.tb.Fatalf("expected status %s, got %s", want, got)
	}
}

func (tc *TestContainer) AssertHas(name string) {
	tc.tb.Helper()

	if !tc.Has(name) {
		tc.tb.Fatalf("expected container to have %s", name)
	}
}

func (tc *TestContainer) AssertNotHas(name string) {
	tc.tb.Helper()

	if tc.Has(name) {
		tc.tb.Fatalf("expected container to not have %s", name)
	}
}

func MustGet[T any](tc *TestContainer, name string) T {
	tc.tb.Helper()

	v, err := depload.Get[T](tc.Container, name)
	if err != nil {
		tc.tb.Fatalf("failed to get %s: %v", name, err)
	}
	return v
}

// Recorder builds services that log their construction, initialization and
// destruction so tests can assert on ordering.
type Recorder struct {
	mu          sync.Mutex
	constructed []string
	initialized []string
	destroyed   []string
}

// Recorded is the instance type produced by Recorder services.
type Recorded struct {
	Name string
	Deps depload.Deps

	rec        *Recorder
	InitErr    error
	DestroyErr error
}

func (r *Recorded) Init(ctx context.Context) error {
	r.rec.mu.Lock()
	r.rec.initialized = append(r.rec.initialized, r.Name)
	r.rec.mu.Unlock()
	return r.InitErr
}

func (r *Recorded) Destroy(ctx context.Context) error {
	r.rec.mu.Lock()
	r.rec.destroyed = append(r.rec.destroyed, r.Name)
	r.rec.mu.Unlock()
	return r.DestroyErr
}

func (rec *Recorder) Service(name string, deps ...string) depload.Service {
	return rec.ServiceWith(name, nil, nil, deps...)
}

// ServiceWith is Service with failing hooks. Nil errors mean success.
func (rec *Recorder) ServiceWith(name string, initErr, destroyErr error, deps ...string) depload.Service {
	return depload.Define(
		name, func(ctx context.Context, d depload.Deps) (*Recorded, error) {
			rec.mu.Lock()
			rec.constructed = append(rec.constructed, name)
			rec.mu.Unlock()

			return &Recorded{Name: name, Deps: d, rec: rec, InitErr: initErr, DestroyErr: destroyErr}, nil
		}, deps...,
	)
}

func (rec *Recorder) Constructed() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return slices.Clone(rec.constructed)
}

func (rec *Recorder) Initialized() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return slices.Clone(rec.initialized)
}

func (rec *Recorder) Destroyed() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return slices.Clone(rec.destroyed)
}
