package loom

import "github.com/loom-di/loom/internal/lifetime"

// Lifetime controls how many instances of a registration the container
// creates: one per resolve call edge (Transient), one per scope (Scoped)
// or one per provider (Singleton).
type Lifetime = lifetime.Lifetime

const (
	Transient = lifetime.Transient
	Scoped    = lifetime.Scoped
	Singleton = lifetime.Singleton
)
