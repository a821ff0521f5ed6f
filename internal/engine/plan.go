package engine

import (
	"sync"

	"github.com/loom-di/loom/internal/graph"
	"github.com/loom-di/loom/internal/introspect"
	"github.com/loom-di/loom/internal/lifetime"
	"github.com/loom-di/loom/internal/typekey"
)

type EdgeMode uint8

const (
	Required EdgeMode = iota
	NoneOnMiss
)

// Edge is one dependency site of a plan node: the field it feeds and the
// child node that produces the value. A NoneOnMiss edge has no child; the
// field keeps its zero value.
type Edge struct {
	Name  string
	Index []int
	Mode  EdgeMode
	Node  *Node
}

// Node is one entry of a compiled activation plan. Shared dependencies
// compile to a single node referenced from several edges, so one
// activation observes one instance per scoped or singleton key.
type Node struct {
	Key      typekey.Key
	Lifetime lifetime.Lifetime
	Builder  Builder
	Ctor     []Edge
	Attrs    []Edge
}

// Planner compiles activation plans. Plans are cached per key and are a
// pure function of the source for a fixed generation; the engine drops the
// cache wholesale when the generation advances.
type Planner struct {
	mu    sync.Mutex
	src   Source
	cache map[string]*Node
	graph *graph.Graph
}

func NewPlanner(src Source) *Planner {
	return &Planner{
		src:   src,
		cache: make(map[string]*Node),
		graph: graph.New(),
	}
}

func (p *Planner) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache = make(map[string]*Node)
	p.graph.Clear()
}

// Cached returns the compiled plan for k without compiling one.
func (p *Planner) Cached(k typekey.Key) (*Node, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.cache[k.ID()]
	return n, ok
}

// Graph returns a snapshot of the dependency graph of everything planned
// so far.
func (p *Planner) Graph() *graph.Graph {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.graph.Clone()
}

func (p *Planner) Plan(root typekey.Key) (*Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.cache[root.ID()]; ok {
		return n, nil
	}

	if err := p.src.EnsureDeferred(); err != nil {
		return nil, err
	}

	c := &compilation{
		planner:  p,
		visiting: make(map[string]bool),
		nodes:    make(map[string]*Node),
	}

	n, err := c.compile(root, nil)
	if err != nil {
		return nil, err
	}

	c.commit()
	return n, nil
}

type compilation struct {
	planner  *Planner
	visiting map[string]bool
	nodes    map[string]*Node
}

// commit installs every node compiled in this invocation into the shared
// cache and records its edges in the dependency graph.
func (c *compilation) commit() {
	for id, n := range c.nodes {
		c.planner.cache[id] = n

		var deps []string
		for _, e := range append(append([]Edge(nil), n.Ctor...), n.Attrs...) {
			if e.Node != nil && e.Node.Builder.Kind != noneBuilder {
				deps = append(deps, e.Node.Key.ID())
			}
		}
		c.planner.graph.Add(id, deps)
	}
}

func (c *compilation) compile(k typekey.Key, stack []typekey.Key) (*Node, error) {
	id := k.ID()

	if n, ok := c.nodes[id]; ok {
		return n, nil
	}
	if n, ok := c.planner.cache[id]; ok {
		return n, nil
	}

	if c.visiting[id] {
		return nil, errCircularDependency(chainStrings(append(stack, k)))
	}

	reg, ok := c.planner.src.Lookup(k)
	if !ok {
		return c.compileFallback(k, stack)
	}

	c.visiting[id] = true
	defer delete(c.visiting, id)

	node := &Node{
		Key:      k,
		Lifetime: reg.Lifetime,
		Builder:  reg.Builder,
	}

	if reg.Builder.Kind == StructBuilder {
		if err := c.compileEdges(node, reg, append(stack, k)); err != nil {
			return nil, err
		}
	}

	c.nodes[id] = node
	return node, nil
}

// compileFallback handles a key with no direct registration: optional
// unions fall back to their member or to the none constant, and name keys
// fall back to a single alias candidate. Anything else cannot resolve.
func (c *compilation) compileFallback(k typekey.Key, stack []typekey.Key) (*Node, error) {
	if elem, ok := k.OptionalElem(); ok {
		if _, registered := c.planner.src.Lookup(elem); registered {
			return c.compile(elem, stack)
		}
		return c.noneNode(k), nil
	}

	if k.Kind() == typekey.Name {
		cands := c.planner.src.AliasCandidates(k.Name())
		if len(cands) == 1 {
			return c.compile(cands[0], stack)
		}
	}

	return nil, errCannotResolveType(k.String(), chainStrings(append(stack, k)))
}

func (c *compilation) noneNode(k typekey.Key) *Node {
	n := &Node{
		Key:      k,
		Lifetime: lifetime.Transient,
		Builder:  Builder{Kind: noneBuilder},
	}
	c.nodes[k.ID()] = n
	return n
}

func (c *compilation) compileEdges(node *Node, reg *Registration, stack []typekey.Key) error {
	info := reg.Builder.Struct

	for _, f := range info.Ctor {
		edge, err := c.compileEdge(node, reg, f, stack)
		if err != nil {
			return err
		}
		node.Ctor = append(node.Ctor, edge)
	}

	for _, f := range info.Attrs {
		edge, err := c.compileEdge(node, reg, f, stack)
		if err != nil {
			return err
		}
		node.Attrs = append(node.Attrs, edge)
	}

	return nil
}

func (c *compilation) compileEdge(node *Node, reg *Registration, f introspect.Field, stack []typekey.Key) (Edge, error) {
	key, err := c.edgeKey(reg, f, stack)
	if err != nil {
		return Edge{}, err
	}

	child, err := c.compile(key, stack)
	if err != nil {
		return Edge{}, err
	}

	mode := Required
	if child.Builder.Kind == noneBuilder {
		mode = NoneOnMiss
		child = nil
	}

	return Edge{Name: f.Name, Index: f.Index, Mode: mode, Node: child}, nil
}

// edgeKey derives the lookup key for one dependency site. Sites with a
// declared type use it directly; a tag reference resolves through the
// alias table; an untyped site falls back to the field name. Alias
// fallback demands exactly one candidate.
func (c *compilation) edgeKey(reg *Registration, f introspect.Field, stack []typekey.Key) (typekey.Key, error) {
	owner := reg.Key.String()
	info := reg.Builder.Struct

	base, typed := info.FieldKey(f)

	if typed && base.Kind() == typekey.Name {
		cands := c.planner.src.AliasCandidates(base.Name())
		switch len(cands) {
		case 1:
			base = cands[0]
		case 0:
			return typekey.Key{}, errCannotResolveParameter(owner, f.Name,
				"reference "+base.String()+" names no registered type", chainStrings(stack))
		default:
			return typekey.Key{}, errCannotResolveParameter(owner, f.Name,
				"reference "+base.String()+" is ambiguous", chainStrings(stack))
		}
	}

	if !typed {
		base = typekey.Key{}
		for _, name := range nameVariants(f.Name) {
			cands := c.planner.src.AliasCandidates(name)
			if len(cands) == 1 {
				base = cands[0]
				break
			}
			if len(cands) > 1 {
				return typekey.Key{}, errCannotResolveParameter(owner, f.Name,
					"name is ambiguous among registered types", chainStrings(stack))
			}
		}
		if base.IsZero() {
			return typekey.Key{}, errCannotResolveParameter(owner, f.Name,
				"no type declaration and no matching alias", chainStrings(stack))
		}
	}

	if f.Optional && !base.IsOptional() {
		base = typekey.OptionalOf(base)
	}

	return base, nil
}

func nameVariants(field string) []string {
	lower := typekey.SnakeCase(field)
	return []string{field, lowerASCII(field), lower}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch - 'A' + 'a'
		}
	}
	return string(b)
}

func chainStrings(keys []typekey.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
