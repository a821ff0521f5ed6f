package loom

import (
	"github.com/loom-di/loom/internal/engine"
	"github.com/loom-di/loom/internal/typekey"
)

// AddTransient registers T under its own key with a fresh instance per
// resolution edge.
func AddTransient[T any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[T](), Transient, Struct[T](), opts...)
}

func AddScoped[T any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[T](), Scoped, Struct[T](), opts...)
}

func AddSingleton[T any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[T](), Singleton, Struct[T](), opts...)
}

// AddTransientAs registers concrete C under the key of I. When I is an
// interface, C must implement it; when I is a concrete type, C must embed
// it. Only I becomes resolvable: C is not registered under its own key.
func AddTransientAs[I, C any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[I](), Transient, Struct[C](), opts...)
}

func AddScopedAs[I, C any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[I](), Scoped, Struct[C](), opts...)
}

func AddSingletonAs[I, C any](r *Registry, opts ...RegisterOption) error {
	return r.Register(KeyOf[I](), Singleton, Struct[C](), opts...)
}

// AddTransientFactory registers a factory. The key is taken from WithKey,
// deferred through WithKeyRef, or inferred from the factory's declared
// result type; a factory returning a bare interface{} with no explicit key
// fails with a missing-type error.
func AddTransientFactory(r *Registry, fn any, opts ...RegisterOption) error {
	return addFactory(r, fn, Transient, opts)
}

func AddScopedFactory(r *Registry, fn any, opts ...RegisterOption) error {
	return addFactory(r, fn, Scoped, opts)
}

func AddSingletonFactory(r *Registry, fn any, opts ...RegisterOption) error {
	return addFactory(r, fn, Singleton, opts)
}

func addFactory(r *Registry, fn any, lt Lifetime, opts []RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := Factory(fn)
	if b.err != nil {
		return b.err
	}

	reg := &engine.Registration{
		Lifetime: lt,
		Builder:  b.inner,
	}

	switch {
	case !o.key.IsZero():
		reg.Key = o.key
	case o.keyRef != "":
		reg.KeyRef = o.keyRef
	default:
		if b.inner.Factory.ResultIsUntyped() {
			return engine.NewError(engine.ErrCodeMissingType,
				"factory declares no usable return type and no key was supplied", nil)
		}
		reg.Key = typekey.ForField(b.inner.Factory.Result)
	}

	return r.inner.Register(reg, o.override)
}

// AddInstance registers an existing value as a singleton, keyed by its
// runtime type unless WithKey overrides it.
func AddInstance(r *Registry, v any, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	key := o.key
	if key.IsZero() {
		inferred, err := keyForInstance(v)
		if err != nil {
			return err
		}
		key = inferred
	}

	return r.inner.Register(&engine.Registration{
		Key:      key,
		Lifetime: Singleton,
		Builder:  Instance(v).inner,
	}, o.override)
}
