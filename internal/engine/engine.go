// Package engine implements the resolution core: the registration table,
// the activation planner and the plan executor. The public package wraps
// it with a typed, generics-friendly surface.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/loom-di/loom/internal/graph"
	"github.com/loom-di/loom/internal/introspect"
	"github.com/loom-di/loom/internal/lifetime"
	"github.com/loom-di/loom/internal/typekey"
)

const (
	singletonLifetime = lifetime.Singleton
	scopedLifetime    = lifetime.Scoped
)

type ResolveHook func(key string, duration time.Duration, err error)

// Engine executes activation plans against a registration source. One
// engine backs one provider: it owns the plan cache (via its planner) and
// the singleton cache, both discarded when the source generation moves.
type Engine struct {
	src     *Overlay
	planner *Planner

	mu         sync.RWMutex
	singletons map[string]any

	genMu       sync.Mutex
	compiledGen uint64

	logger    *slog.Logger
	onResolve []ResolveHook
}

func NewEngine(src *Overlay, logger *slog.Logger, hooks []ResolveHook) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		src:         src,
		planner:     NewPlanner(src),
		singletons:  make(map[string]any),
		compiledGen: src.Generation(),
		logger:      logger,
		onResolve:   hooks,
	}
}

func (e *Engine) Resolve(k typekey.Key, act *Activation) (any, error) {
	start := time.Now()
	v, err := e.resolve(k, act)
	for _, hook := range e.onResolve {
		hook(k.String(), time.Since(start), err)
	}
	return v, err
}

func (e *Engine) resolve(k typekey.Key, act *Activation) (any, error) {
	e.refresh()

	node, err := e.planner.Plan(k)
	if err != nil {
		return nil, err
	}

	return e.activate(node, act)
}

// refresh invalidates the plan and singleton caches when the registry has
// mutated since they were compiled. Additions through the provider overlay
// do not advance the generation and so never trigger this.
func (e *Engine) refresh() {
	e.genMu.Lock()
	defer e.genMu.Unlock()

	gen := e.src.Generation()
	if gen == e.compiledGen {
		return
	}

	e.planner.Invalidate()

	e.mu.Lock()
	e.singletons = make(map[string]any)
	e.mu.Unlock()

	e.logger.Debug("registry changed, plans and singletons invalidated",
		"generation", gen)
	e.compiledGen = gen
}

// Validate compiles a plan for every registered key, reporting every
// structural failure at once. On top of the per-key planner errors it
// walks the declared dependency graph as a whole, so every cycle is
// reported with its full membership even when several keys share it.
func (e *Engine) Validate() error {
	e.refresh()

	var errs []error
	for _, k := range e.src.Registry().Keys() {
		if _, err := e.planner.Plan(k); err != nil {
			errs = append(errs, err)
		}
	}

	if g, display := e.declaredGraph(); g.HasCycle() {
		for _, scc := range g.Cycles() {
			path := g.CyclePath(scc[0])
			if path == nil {
				continue
			}
			chain := make([]string, len(path))
			for i, id := range path {
				if s, ok := display[id]; ok {
					chain[i] = s
				} else {
					chain[i] = id
				}
			}
			errs = append(errs, errCircularDependency(chain))
		}
	}

	return errors.Join(errs...)
}

// declaredGraph builds the dependency graph straight from the
// registrations: only direct, required, exactly-keyed edges participate,
// so a reported cycle is a real one regardless of alias or optional
// fallbacks. The display map translates node IDs back to key strings.
func (e *Engine) declaredGraph() (*graph.Graph, map[string]string) {
	reg := e.src.Registry()

	g := graph.New()
	display := make(map[string]string)

	for _, k := range reg.Keys() {
		entry, ok := reg.Lookup(k)
		if !ok {
			continue
		}
		display[k.ID()] = k.String()

		var deps []string
		if entry.Builder.Kind == StructBuilder {
			info := entry.Builder.Struct
			for _, f := range append(append([]introspect.Field(nil), info.Ctor...), info.Attrs...) {
				key, typed := info.FieldKey(f)
				if !typed || f.Optional || key.Kind() == typekey.Name || key.IsOptional() {
					continue
				}
				deps = append(deps, key.ID())
			}
		}
		g.Add(k.ID(), deps)
	}

	return g, display
}

// Graph returns the dependency graph of everything planned so far.
func (e *Engine) Graph() *graph.Graph {
	return e.planner.Graph()
}

// CachedPlan reports whether a plan for k is compiled, for observability.
func (e *Engine) CachedPlan(k typekey.Key) (*Node, bool) {
	return e.planner.Cached(k)
}

// Singletons snapshots the constructed singleton instances by key ID.
func (e *Engine) Singletons() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]any, len(e.singletons))
	for id, v := range e.singletons {
		out[id] = v
	}
	return out
}
