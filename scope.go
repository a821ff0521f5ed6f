package loom

import (
	"reflect"
	"sync"

	"github.com/loom-di/loom/internal/engine"
)

// Scope is the per-resolution context: it owns the scoped-instance cache
// and tracks the currently-activating parent type for context-aware
// factories. Scopes are not safe for concurrent use.
type Scope struct {
	provider *Provider
	act      *engine.Activation
	tracked  bool
	closed   bool
}

// Get resolves key within this scope: scoped instances created here are
// reused for the lifetime of the scope.
func (s *Scope) Get(key Key) (any, error) {
	if s.closed {
		return nil, engine.NewError(engine.ErrCodeUnknown, "scope already closed", nil).
			WithKey(key.String())
	}
	return s.provider.engine.Resolve(key, s.act)
}

func (s *Scope) Provider() *Provider {
	return s.provider
}

// ActivatingType returns the concrete type of the nearest activating
// parent, or nil outside an activation. Factories with the two-parameter
// shape receive the same value directly.
func (s *Scope) ActivatingType() reflect.Type {
	return s.act.ActivatingType()
}

// Close drops the scoped instances. The container never disposes them:
// resource lifecycles belong to the caller.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.act.Clear()
	if s.tracked {
		popAmbient(s)
	}
}

// The ambient stack behind WithTrackingScopes. Experimental: it is a
// process-wide slot, not a per-goroutine one.
var ambient struct {
	mu    sync.Mutex
	stack []*Scope
}

func pushAmbient(s *Scope) {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()

	ambient.stack = append(ambient.stack, s)
}

func popAmbient(s *Scope) {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()

	for i := len(ambient.stack) - 1; i >= 0; i-- {
		if ambient.stack[i] == s {
			ambient.stack = append(ambient.stack[:i], ambient.stack[i+1:]...)
			return
		}
	}
}

func currentAmbient(p *Provider) *Scope {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()

	for i := len(ambient.stack) - 1; i >= 0; i-- {
		if ambient.stack[i].provider == p {
			return ambient.stack[i]
		}
	}
	return nil
}
