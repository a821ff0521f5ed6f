package loom

import (
	"fmt"

	"github.com/loom-di/loom/internal/engine"
)

// Get resolves T from the provider.
func Get[T any](p *Provider) (T, error) {
	return GetKey[T](p, KeyOf[T]())
}

// GetKey resolves an explicit key — a union, parameterized or collection
// form — and asserts the result to T.
func GetKey[T any](p *Provider, key Key) (T, error) {
	var zero T

	v, err := p.Get(key)
	if err != nil {
		return zero, err
	}

	return assertTo[T](key, v)
}

// MustGet is Get, panicking on error.
func MustGet[T any](p *Provider) T {
	v, err := Get[T](p)
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet reports whether T could be resolved.
func TryGet[T any](p *Provider) (T, bool) {
	v, err := Get[T](p)
	return v, err == nil
}

// GetScoped resolves T within an open scope.
func GetScoped[T any](s *Scope) (T, error) {
	return GetScopedKey[T](s, KeyOf[T]())
}

func GetScopedKey[T any](s *Scope, key Key) (T, error) {
	var zero T

	v, err := s.Get(key)
	if err != nil {
		return zero, err
	}

	return assertTo[T](key, v)
}

func MustGetScoped[T any](s *Scope) T {
	v, err := GetScoped[T](s)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveFrom resolves T through a registry's lazily-built default
// provider, for quick starts that never hand out a provider.
func ResolveFrom[T any](r *Registry) (T, error) {
	var zero T

	v, err := r.Resolve(KeyOf[T]())
	if err != nil {
		return zero, err
	}

	return assertTo[T](KeyOf[T](), v)
}

func assertTo[T any](key Key, v any) (T, error) {
	var zero T

	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, engine.NewError(engine.ErrCodeTypeMismatch,
			fmt.Sprintf("resolved value of type %T is not assignable to the requested type", v),
			nil).WithKey(key.String())
	}
	return typed, nil
}
