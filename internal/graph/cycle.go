package graph

func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	if g.cycleValid {
		result := g.hasCycle
		g.mu.RUnlock()
		return result
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cycleValid {
		return g.hasCycle
	}

	g.hasCycle = g.hasCycleLocked()
	g.cycleValid = true
	return g.hasCycle
}

func (g *Graph) hasCycleLocked() bool {
	white := make(map[string]bool, len(g.deps))
	gray := make(map[string]bool, len(g.deps))

	for id := range g.deps {
		white[id] = true
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		white[id] = false
		gray[id] = true

		for _, dep := range g.deps[id] {
			if _, ok := g.deps[dep]; !ok {
				continue
			}
			if gray[dep] {
				return true
			}
			if white[dep] && dfs(dep) {
				return true
			}
		}

		gray[id] = false
		return false
	}

	for id := range g.deps {
		if white[id] && dfs(id) {
			return true
		}
	}
	return false
}

// CyclePath walks from start and returns the first cycle found, as the path
// of node IDs with the entry node repeated at the end. Nil when start does
// not reach a cycle.
func (g *Graph) CyclePath(start string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var path []string

	var dfs func(id string) []string
	dfs = func(id string) []string {
		if inPath[id] {
			var cycle []string
			found := false
			for _, p := range path {
				if p == id {
					found = true
				}
				if found {
					cycle = append(cycle, p)
				}
			}
			return append(cycle, id)
		}
		if visited[id] {
			return nil
		}

		visited[id] = true
		path = append(path, id)
		inPath[id] = true

		for _, dep := range g.deps[id] {
			if _, ok := g.deps[dep]; !ok {
				continue
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		inPath[id] = false
		return nil
	}

	return dfs(start)
}

// Cycles returns every strongly connected component that forms a cycle,
// using Tarjan's algorithm.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t := &tarjan{
		deps:    g.deps,
		onStack: make(map[string]bool),
		indices: make(map[string]int),
		lowlink: make(map[string]int),
	}

	for id := range g.deps {
		if _, seen := t.indices[id]; !seen {
			t.connect(id)
		}
	}

	var cycles [][]string
	for _, scc := range t.sccs {
		if len(scc) > 1 {
			cycles = append(cycles, scc)
			continue
		}
		id := scc[0]
		for _, dep := range g.deps[id] {
			if dep == id {
				cycles = append(cycles, scc)
				break
			}
		}
	}
	return cycles
}

type tarjan struct {
	deps    map[string][]string
	index   int
	stack   []string
	onStack map[string]bool
	indices map[string]int
	lowlink map[string]int
	sccs    [][]string
}

func (t *tarjan) connect(id string) {
	t.indices[id] = t.index
	t.lowlink[id] = t.index
	t.index++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	for _, dep := range t.deps[id] {
		if _, ok := t.deps[dep]; !ok {
			continue
		}
		if _, seen := t.indices[dep]; !seen {
			t.connect(dep)
			t.lowlink[id] = min(t.lowlink[id], t.lowlink[dep])
		} else if t.onStack[dep] {
			t.lowlink[id] = min(t.lowlink[id], t.indices[dep])
		}
	}

	if t.lowlink[id] == t.indices[id] {
		var scc []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == id {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
