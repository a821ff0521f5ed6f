package engine

import (
	"sync"

	"github.com/loom-di/loom/internal/typekey"
)

// Source is the registration view the planner compiles against. The
// registry implements it directly; providers wrap it with an additive
// overlay for instances added after the build.
type Source interface {
	Lookup(k typekey.Key) (*Registration, bool)
	AliasCandidates(name string) []typekey.Key
	EnsureDeferred() error
	Generation() uint64
}

// Overlay layers provider-added singleton instances over a registry
// without touching its generation counter, so plans stay valid.
type Overlay struct {
	reg *Registry

	mu    sync.RWMutex
	extra map[string]*Registration
}

func NewOverlay(reg *Registry) *Overlay {
	return &Overlay{
		reg:   reg,
		extra: make(map[string]*Registration),
	}
}

// Add installs an instance registration for a key unknown to both the
// registry and the overlay. Colliding with any existing registration is an
// overriding-service error: the overlay is strictly additive.
func (o *Overlay) Add(reg *Registration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := reg.Key.ID()
	if _, ok := o.extra[id]; ok {
		return errOverridingService(reg.Key.String())
	}
	if o.reg.Contains(reg.Key) {
		return errOverridingService(reg.Key.String())
	}

	o.extra[id] = reg
	return nil
}

func (o *Overlay) Lookup(k typekey.Key) (*Registration, bool) {
	o.mu.RLock()
	reg, ok := o.extra[k.ID()]
	o.mu.RUnlock()
	if ok {
		return reg, true
	}
	return o.reg.Lookup(k)
}

func (o *Overlay) Contains(k typekey.Key) bool {
	_, ok := o.Lookup(k)
	return ok
}

func (o *Overlay) AliasCandidates(name string) []typekey.Key {
	return o.reg.AliasCandidates(name)
}

func (o *Overlay) EnsureDeferred() error {
	return o.reg.EnsureDeferred()
}

func (o *Overlay) Generation() uint64 {
	return o.reg.Generation()
}

func (o *Overlay) Registry() *Registry {
	return o.reg
}
