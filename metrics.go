package loom

import "github.com/loom-di/loom/internal/engine"

// ResolveHook observes every resolution with its duration and outcome.
type ResolveHook = engine.ResolveHook

// RegisterHook observes every registration, including deferred ones (keyed
// "#ref" when parked and by the resolved key when materialized). Alias
// additions are not reported.
type RegisterHook = engine.RegisterHook
