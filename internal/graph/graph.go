package graph

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNodeExists   = errors.New("node already exists")
	ErrNodeNotFound = errors.New("node not found")
)

type Options struct {
	// Circular tolerates cycles when computing an order instead of failing.
	Circular bool
}

type node[T any] struct {
	data     T
	outgoing []string
	incoming []string
}

// Graph is a directed graph of named nodes carrying a payload of type T.
// An edge from -> to means "from depends on to". Node and edge iteration
// follows insertion order so orderings are reproducible.
type Graph[T any] struct {
	mu       sync.RWMutex
	nodes    map[string]*node[T]
	order    []string
	circular bool
}

func New[T any](opts Options) *Graph[T] {
	return &Graph[T]{
		nodes:    make(map[string]*node[T]),
		circular: opts.Circular,
	}
}

func (g *Graph[T]) Circular() bool {
	return g.circular
}

func (g *Graph[T]) AddNode(name string, data T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[name]; exists {
		return ErrNodeExists
	}

	g.nodes[name] = &node[T]{data: data}
	g.order = append(g.order, name)
	return nil
}

func (g *Graph[T]) SetNodeData(name string, data T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, exists := g.nodes[name]
	if !exists {
		return ErrNodeNotFound
	}
	n.data = data
	return nil
}

// NodeData returns the payload stored under name. The boolean reports
// whether the node exists.
func (g *Graph[T]) NodeData(name string) (T, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, exists := g.nodes[name]
	if !exists {
		var zero T
		return zero, false
	}
	return n.data, true
}

func (g *Graph[T]) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[name]
	return exists
}

// AddDependency records that from depends on to. Both nodes must exist.
// Adding the same edge twice is a no-op.
func (g *Graph[T]) AddDependency(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.nodes[from]
	if !ok {
		return ErrNodeNotFound
	}
	dst, ok := g.nodes[to]
	if !ok {
		return ErrNodeNotFound
	}

	if slices.Contains(src.outgoing, to) {
		return nil
	}
	src.outgoing = append(src.outgoing, to)
	dst.incoming = append(dst.incoming, from)
	return nil
}

func (g *Graph[T]) DependenciesOf(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, exists := g.nodes[name]
	if !exists {
		return nil
	}
	return slices.Clone(n.outgoing)
}

func (g *Graph[T]) DependantsOf(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, exists := g.nodes[name]
	if !exists {
		return nil
	}
	return slices.Clone(n.incoming)
}

// Nodes returns all node names in insertion order.
func (g *Graph[T]) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.order)
}

func (g *Graph[T]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

func (g *Graph[T]) Clone() *Graph[T] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New[T](Options{Circular: g.circular})
	for _, name := range g.order {
		n := g.nodes[name]
		clone.nodes[name] = &node[T]{
			data:     n.data,
			outgoing: slices.Clone(n.outgoing),
			incoming: slices.Clone(n.incoming),
		}
	}
	clone.order = slices.Clone(g.order)
	return clone
}
