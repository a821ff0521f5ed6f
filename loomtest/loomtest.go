// Package loomtest provides helpers for wiring containers in tests:
// fatal-on-error registration, resolution assertions and service
// replacement through the registry's override path.
package loomtest

import (
	"github.com/loom-di/loom"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

type TestRegistry struct {
	*loom.Registry
	tb TB
}

func New(tb TB, opts ...loom.Option) *TestRegistry {
	tb.Helper()

	return &TestRegistry{
		Registry: loom.NewRegistry(opts...),
		tb:       tb,
	}
}

func (tr *TestRegistry) RequireValidate() {
	tr.tb.Helper()

	if err := tr.Validate(); err != nil {
		tr.tb.Fatalf("registry validation failed: %v", err)
	}
}

// Replace swaps whatever is registered under T's key for a fixed value.
// The provider built from this registry recompiles its plans on next use.
func Replace[T any](tr *TestRegistry, value T) {
	tr.tb.Helper()

	key := loom.KeyOf[T]()
	err := loom.AddInstance(tr.Registry, value, loom.WithKey(key), loom.Override())
	if err != nil {
		tr.tb.Fatalf("failed to replace %s: %v", key, err)
	}
}

// ReplaceFactory swaps the registration under T's key for a factory.
func ReplaceFactory[T any](tr *TestRegistry, fn any) {
	tr.tb.Helper()

	key := loom.KeyOf[T]()
	err := loom.AddSingletonFactory(tr.Registry, fn, loom.WithKey(key), loom.Override())
	if err != nil {
		tr.tb.Fatalf("failed to replace factory for %s: %v", key, err)
	}
}

func MustResolve[T any](tr *TestRegistry) T {
	tr.tb.Helper()

	v, err := loom.ResolveFrom[T](tr.Registry)
	if err != nil {
		tr.tb.Fatalf("failed to resolve %s: %v", loom.KeyOf[T](), err)
	}
	return v
}

func AssertContains[T any](tr *TestRegistry) {
	tr.tb.Helper()

	if !tr.Contains(loom.KeyOf[T]()) {
		tr.tb.Fatalf("expected registry to contain %s", loom.KeyOf[T]())
	}
}

func AssertNotContains[T any](tr *TestRegistry) {
	tr.tb.Helper()

	if tr.Contains(loom.KeyOf[T]()) {
		tr.tb.Fatalf("expected registry to not contain %s", loom.KeyOf[T]())
	}
}
