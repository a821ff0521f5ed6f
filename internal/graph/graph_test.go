package graph

import (
	"sort"
	"testing"
)

func TestGraph_Basics(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"b", "c"})
	g.Add("b", []string{"c"})
	g.Add("c", nil)

	if g.Size() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.Size())
	}

	deps := g.Dependencies("a")
	if len(deps) != 2 {
		t.Errorf("expected 2 dependencies, got %v", deps)
	}

	dependents := g.Dependents("c")
	sort.Strings(dependents)
	if len(dependents) != 2 || dependents[0] != "a" || dependents[1] != "b" {
		t.Errorf("unexpected dependents %v", dependents)
	}
}

func TestGraph_CycleDetection(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"c"})
	g.Add("c", nil)

	if g.HasCycle() {
		t.Error("acyclic graph misreported")
	}

	g.Add("c", []string{"a"})
	if !g.HasCycle() {
		t.Error("cycle not detected")
	}

	path := g.CyclePath("a")
	if len(path) != 4 || path[0] != path[len(path)-1] {
		t.Errorf("unexpected cycle path %v", path)
	}

	cycles := g.Cycles()
	if len(cycles) != 1 || len(cycles[0]) != 3 {
		t.Errorf("unexpected cycles %v", cycles)
	}
}

func TestGraph_SelfCycle(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"a"})

	if !g.HasCycle() {
		t.Error("self-cycle not detected")
	}
	cycles := g.Cycles()
	if len(cycles) != 1 || len(cycles[0]) != 1 {
		t.Errorf("unexpected cycles %v", cycles)
	}
}

func TestGraph_DanglingEdgesIgnored(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"ghost", "b"})
	g.Add("b", nil)

	if g.HasCycle() {
		t.Error("dangling edges must not trip cycle detection")
	}
	if path := g.CyclePath("a"); path != nil {
		t.Errorf("expected no cycle path, got %v", path)
	}
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", nil)

	clone := g.Clone()
	g.Add("c", nil)

	if clone.Size() != 2 {
		t.Errorf("expected clone of size 2, got %d", clone.Size())
	}
	if len(clone.Dependencies("a")) != 1 {
		t.Error("clone lost edges")
	}
}

func TestGraph_ClearInvalidatesCycleCache(t *testing.T) {
	t.Parallel()

	g := New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})

	if !g.HasCycle() {
		t.Fatal("cycle not detected")
	}

	g.Clear()
	if g.HasCycle() {
		t.Error("stale cycle cache after clear")
	}
}
