package graph

import "slices"

type cycleDetector[T any] struct {
	graph   *Graph[T]
	index   int
	stack   []string
	onStack map[string]bool
	indices map[string]int
	lowlink map[string]int
	sccs    [][]string
}

// DetectCycles returns every strongly connected component that forms a
// cycle, including single nodes depending on themselves. Members of each
// component are listed in insertion order.
func (g *Graph[T]) DetectCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.detectCyclesUnsafe()
}

func (g *Graph[T]) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.detectCyclesUnsafe()) > 0
}

func (g *Graph[T]) detectCyclesUnsafe() [][]string {
	detector := &cycleDetector[T]{
		graph:   g,
		onStack: make(map[string]bool),
		indices: make(map[string]int),
		lowlink: make(map[string]int),
	}

	for _, name := range g.order {
		if _, visited := detector.indices[name]; !visited {
			detector.strongConnect(name)
		}
	}

	position := make(map[string]int, len(g.order))
	for i, name := range g.order {
		position[name] = i
	}

	var cycles [][]string
	for _, scc := range detector.sccs {
		if len(scc) == 1 && !slices.Contains(g.nodes[scc[0]].outgoing, scc[0]) {
			continue
		}
		slices.SortFunc(scc, func(a, b string) int { return position[a] - position[b] })
		cycles = append(cycles, scc)
	}

	return cycles
}

func (d *cycleDetector[T]) strongConnect(name string) {
	d.indices[name] = d.index
	d.lowlink[name] = d.index
	d.index++
	d.stack = append(d.stack, name)
	d.onStack[name] = true

	for _, dep := range d.graph.nodes[name].outgoing {
		if _, visited := d.indices[dep]; !visited {
			d.strongConnect(dep)
			d.lowlink[name] = min(d.lowlink[name], d.lowlink[dep])
		} else if d.onStack[dep] {
			d.lowlink[name] = min(d.lowlink[name], d.indices[dep])
		}
	}

	if d.lowlink[name] == d.indices[name] {
		var scc []string
		for {
			n := len(d.stack) - 1
			w := d.stack[n]
			d.stack = d.stack[:n]
			d.onStack[w] = false
			scc = append(scc, w)
			if w == name {
				break
			}
		}
		d.sccs = append(d.sccs, scc)
	}
}
