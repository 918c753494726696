package container

import (
	"context"
	"maps"
	"slices"
)

// PlaceholderName is reserved for unresolved dependency nodes.
const PlaceholderName = "placeholder"

type Constructor func(ctx context.Context, deps Deps) (any, error)

type Definition struct {
	Name string
	Deps []string
	New  Constructor
}

type Initializer interface {
	Init(ctx context.Context) error
}

type Destructor interface {
	Destroy(ctx context.Context) error
}

// Node is the graph payload. A node that was only ever named as a
// dependency is not Defined and cannot be constructed.
type Node struct {
	Defined    bool
	Definition Definition
}

// Deps is the read-only set of dependency instances handed to a
// constructor, keyed by dependency name.
type Deps struct {
	names  []string
	values map[string]any
}

func NewDeps(names []string, values map[string]any) Deps {
	return Deps{
		names:  slices.Clone(names),
		values: maps.Clone(values),
	}
}

func (d Deps) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Names lists the bound dependencies in declaration order.
func (d Deps) Names() []string {
	return slices.Clone(d.names)
}

func (d Deps) Len() int {
	return len(d.names)
}

func (d Deps) Map() map[string]any {
	m := maps.Clone(d.values)
	if m == nil {
		m = make(map[string]any)
	}
	return m
}
