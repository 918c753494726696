package depload

import (
	"github.com/4S1ght/depload/internal/reflect"
)

// Instance returns the live instance of a started service.
func (c *Container) Instance(name string) (any, bool) {
	return c.internal.Instance(name)
}

// Get returns the live instance called name as a T.
func Get[T any](c *Container, name string) (T, error) {
	var zero T

	v, ok := c.internal.Instance(name)
	if !ok {
		return zero, errServiceNotFound(name)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, errTypeMismatch(name, reflect.TypeName[T](), v)
	}
	return typed, nil
}

func MustGet[T any](c *Container, name string) T {
	v, err := Get[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}
