package loom

import (
	"reflect"

	"github.com/loom-di/loom/internal/engine"
	"github.com/loom-di/loom/internal/lifetime"
)

// Provider is the read-mostly view over a registry: the handle application
// code resolves through. It owns the compiled plans and the singleton
// cache. Set can add further singletons without invalidating either.
type Provider struct {
	reg      *Registry
	overlay  *engine.Overlay
	engine   *engine.Engine
	tracking bool
}

// Get resolves key inside a fresh activation scope. With tracking scopes
// enabled and an open ambient scope from this provider, the resolution
// joins that scope instead.
func (p *Provider) Get(key Key) (any, error) {
	if p.tracking {
		if s := currentAmbient(p); s != nil {
			return s.Get(key)
		}
	}

	s := p.newScope(false)
	defer s.Close()
	return s.Get(key)
}

// Resolve is an alias for Get.
func (p *Provider) Resolve(key Key) (any, error) {
	return p.Get(key)
}

func (p *Provider) Contains(key Key) bool {
	return p.overlay.Contains(key)
}

// Set adds a singleton instance under a new key. It is strictly additive:
// colliding with any existing registration — whatever its lifetime — or a
// previous Set fails with an overriding-service error, and no plan or
// cached singleton is invalidated.
func (p *Provider) Set(key Key, instance any) error {
	if key.IsZero() {
		inferred, err := keyForInstance(instance)
		if err != nil {
			return err
		}
		key = inferred
	}
	if instance == nil {
		return engine.NewError(engine.ErrCodeMissingType,
			"cannot store a nil instance", nil).WithKey(key.String())
	}

	return p.overlay.Add(&engine.Registration{
		Key:      key,
		Lifetime: lifetime.Singleton,
		Builder:  Instance(instance).inner,
	})
}

// CreateScope opens an activation scope. The caller must Close it; scoped
// instances live until then.
func (p *Provider) CreateScope() *Scope {
	return p.newScope(p.tracking)
}

func (p *Provider) newScope(tracked bool) *Scope {
	s := &Scope{provider: p, tracked: tracked}
	s.act = engine.NewActivation(reflect.ValueOf(s))
	if tracked {
		pushAmbient(s)
	}
	return s
}
