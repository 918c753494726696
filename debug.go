package depload

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/4S1ght/depload/internal/reflect"
)

type GraphInfo struct {
	Services []ServiceInfo
}

type ServiceInfo struct {
	Name         string
	Dependencies []string
	Dependants   []string
	Registered   bool
	Instantiated bool
	Type         string
}

// Graph describes every node in construction order. Nodes that were only
// named as dependencies have Registered set to false.
func (c *Container) Graph() GraphInfo {
	g := c.internal.Graph()

	names, err := g.OverallOrder()
	if err != nil {
		names = g.Nodes()
	}

	services := make([]ServiceInfo, 0, len(names))
	for _, name := range names {
		n, _ := g.NodeData(name)
		instance, instantiated := c.internal.Instance(name)

		info := ServiceInfo{
			Name:         name,
			Dependencies: g.DependenciesOf(name),
			Dependants:   g.DependantsOf(name),
			Registered:   n.Defined,
			Instantiated: instantiated,
		}
		if instantiated {
			info.Type = reflect.TypeNameOf(instance)
		}
		services = append(services, info)
	}

	return GraphInfo{Services: services}
}

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Services) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "SERVICE", "DEPENDS ON", "TYPE"})

	for _, svc := range info.Services {
		t.AppendRow(table.Row{marker(svc), svc.Name, strings.Join(svc.Dependencies, ", "), svc.Type})
	}

	t.Render()
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func marker(svc ServiceInfo) string {
	switch {
	case !svc.Registered:
		return "?"
	case svc.Instantiated:
		return "●"
	default:
		return "○"
	}
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, svc := range info.Services {
		style := ""
		switch {
		case !svc.Registered:
			style = ", style=dashed"
		case svc.Instantiated:
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", svc.Name, svc.Name, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, svc := range info.Services {
		for _, dep := range svc.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", svc.Name, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}
