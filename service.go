package depload

import (
	"context"

	"github.com/4S1ght/depload/internal/container"
	"github.com/4S1ght/depload/internal/reflect"
)

// PlaceholderName cannot be used as a service or dependency name.
const PlaceholderName = container.PlaceholderName

// Deps carries the already running dependencies of a service, keyed by the
// names listed in Service.Deps.
type Deps = container.Deps

// Constructor builds a service instance from its dependencies.
type Constructor = container.Constructor

// Service describes a named unit the container can build.
type Service struct {
	Name string
	Deps []string
	New  Constructor
}

func NewService(name string, ctor Constructor, deps ...string) Service {
	return Service{
		Name: name,
		Deps: deps,
		New:  ctor,
	}
}

// Define is NewService for constructors returning a concrete type.
func Define[T any](name string, ctor func(ctx context.Context, deps Deps) (T, error), deps ...string) Service {
	return NewService(
		name, func(ctx context.Context, d Deps) (any, error) {
			return ctor(ctx, d)
		}, deps...,
	)
}

// Dep returns the dependency called name as a T.
func Dep[T any](deps Deps, name string) (T, error) {
	var zero T

	v, ok := deps.Get(name)
	if !ok {
		return zero, errServiceNotFound(name)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, errTypeMismatch(name, reflect.TypeName[T](), v)
	}
	return typed, nil
}

func MustDep[T any](deps Deps, name string) T {
	v, err := Dep[T](deps, name)
	if err != nil {
		panic(err)
	}
	return v
}
