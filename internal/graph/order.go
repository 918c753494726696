package graph

import (
	"errors"
	"slices"
	"strings"
)

var ErrCycleDetected = errors.New("cycle detected in graph")

// CycleError reports the first cycle met while ordering the graph. Path
// starts and ends with the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle found: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

type walk[T any] struct {
	graph   *Graph[T]
	visited map[string]bool
	inPath  map[string]bool
	path    []string
	result  []string
}

func (w *walk[T]) visit(name string) error {
	if w.visited[name] {
		return nil
	}

	if w.inPath[name] {
		if w.graph.circular {
			return nil
		}
		start := slices.Index(w.path, name)
		cycle := append(slices.Clone(w.path[start:]), name)
		return &CycleError{Path: cycle}
	}

	w.inPath[name] = true
	w.path = append(w.path, name)

	for _, dep := range w.graph.nodes[name].outgoing {
		if err := w.visit(dep); err != nil {
			return err
		}
	}

	w.path = w.path[:len(w.path)-1]
	w.inPath[name] = false
	w.visited[name] = true
	w.result = append(w.result, name)
	return nil
}

// OverallOrder returns every node such that each dependency comes before
// the nodes that depend on it.
//
// The walk is a depth-first post-order that starts from nodes nothing
// depends on, in insertion order, and follows edges in the order they were
// added. Nodes only reachable through a cycle are walked afterwards, again in
// insertion order. Without Circular, the first cycle met is returned as a
// *CycleError; with it, back edges are skipped.
func (g *Graph[T]) OverallOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	w := &walk[T]{
		graph:   g,
		visited: make(map[string]bool, len(g.nodes)),
		inPath:  make(map[string]bool, len(g.nodes)),
		result:  make([]string, 0, len(g.nodes)),
	}

	for _, name := range g.order {
		if len(g.nodes[name].incoming) != 0 {
			continue
		}
		if err := w.visit(name); err != nil {
			return nil, err
		}
	}

	for _, name := range g.order {
		if err := w.visit(name); err != nil {
			return nil, err
		}
	}

	return w.result, nil
}

// ReverseOrder is OverallOrder reversed: dependants before dependencies.
func (g *Graph[T]) ReverseOrder() ([]string, error) {
	order, err := g.OverallOrder()
	if err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}
