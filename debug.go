package loom

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

type GraphInfo struct {
	Services []ServiceInfo
}

type ServiceInfo struct {
	Key          string
	Lifetime     string
	Dependencies []string
	Dependents   []string
	Planned      bool
}

// Graph describes the registrations and the dependency edges discovered by
// planning so far. Keys that were never resolved appear with no edges.
func (p *Provider) Graph() GraphInfo {
	reg := p.overlay.Registry()
	g := p.engine.Graph()

	keys := reg.Keys()
	display := make(map[string]string, len(keys))
	for _, k := range keys {
		display[k.ID()] = k.String()
	}

	pretty := func(id string) string {
		if s, ok := display[id]; ok {
			return s
		}
		return id
	}

	services := make([]ServiceInfo, 0, len(keys))
	for _, k := range keys {
		entry, ok := reg.Lookup(k)
		if !ok {
			continue
		}

		var deps, dependents []string
		for _, id := range g.Dependencies(k.ID()) {
			deps = append(deps, pretty(id))
		}
		for _, id := range g.Dependents(k.ID()) {
			dependents = append(dependents, pretty(id))
		}

		_, planned := p.engine.CachedPlan(k)

		services = append(services, ServiceInfo{
			Key:          k.String(),
			Lifetime:     entry.Lifetime.String(),
			Dependencies: deps,
			Dependents:   dependents,
			Planned:      planned,
		})
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Key < services[j].Key })

	return GraphInfo{Services: services}
}

func (p *Provider) PrintGraph() {
	p.FprintGraph(os.Stdout)
}

func (p *Provider) FprintGraph(w io.Writer) {
	info := p.Graph()

	if len(info.Services) == 0 {
		_, _ = fmt.Fprintln(w, "(empty registry)")
		return
	}

	for _, svc := range info.Services {
		status := "○"
		if svc.Planned {
			status = "●"
		}

		if len(svc.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s [%s]\n", status, svc.Key, svc.Lifetime)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s [%s] ← %s\n",
				status, svc.Key, svc.Lifetime, strings.Join(svc.Dependencies, ", "))
		}
	}
}

func (p *Provider) SprintGraph() string {
	var sb strings.Builder
	p.FprintGraph(&sb)
	return sb.String()
}

func (p *Provider) PrintGraphDOT() {
	p.FprintGraphDOT(os.Stdout)
}

func (p *Provider) FprintGraphDOT(w io.Writer) {
	info := p.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, svc := range info.Services {
		style := ""
		if svc.Planned {
			style = ", style=filled, fillcolor=lightblue"
		}
		label := fmt.Sprintf("%s\\n(%s)", escapeLabel(svc.Key), svc.Lifetime)
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", svc.Key, label, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, svc := range info.Services {
		for _, dep := range svc.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", svc.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (p *Provider) SprintGraphDOT() string {
	var sb strings.Builder
	p.FprintGraphDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
