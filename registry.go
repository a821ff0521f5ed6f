package loom

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/loom-di/loom/internal/engine"
	"github.com/loom-di/loom/internal/introspect"
	"github.com/loom-di/loom/internal/typekey"
)

// Registry is the mutable registration table. Register services, then call
// BuildProvider for the read-mostly handle application code should use.
// Mutating the registry after a provider was built forces that provider to
// recompile its plans and discard its singletons on next use.
type Registry struct {
	cfg   config
	inner *engine.Registry

	mu  sync.Mutex
	def *Provider
}

func NewRegistry(opts ...Option) *Registry {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Registry{
		cfg:   cfg,
		inner: engine.NewRegistry(cfg.strict, cfg.logger, cfg.registerHooks),
	}
}

// Builder describes how an instance is produced: a struct type to
// construct, a factory callable or an existing value.
type Builder struct {
	inner engine.Builder
	err   error
}

// Struct builds instances of T by constructing the struct and satisfying
// its tagged fields. T may be a struct type or a pointer to one.
func Struct[T any]() Builder {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return StructOf(t)
}

func StructOf(t reflect.Type) Builder {
	info, err := introspect.InspectStruct(t)
	if err != nil {
		return Builder{err: engine.NewError(engine.ErrCodeTypeMismatch, err.Error(), nil)}
	}
	return Builder{inner: engine.Builder{
		Kind:   engine.StructBuilder,
		Type:   t,
		Struct: info,
	}}
}

// Factory wraps a user callable. Accepted shapes: func() T,
// func(*Scope) T and func(*Scope, reflect.Type) T, each optionally
// returning (T, error).
func Factory(fn any) Builder {
	info, err := introspect.InspectFactory(fn, scopeType)
	if err != nil {
		return Builder{err: engine.NewError(engine.ErrCodeInvalidFactory, err.Error(), nil)}
	}
	return Builder{inner: engine.Builder{
		Kind:    engine.FactoryBuilder,
		Type:    info.Result,
		Factory: info,
	}}
}

// Instance wraps an existing value.
func Instance(v any) Builder {
	return Builder{inner: engine.Builder{
		Kind:     engine.InstanceBuilder,
		Type:     reflect.TypeOf(v),
		Instance: reflect.ValueOf(v),
	}}
}

var scopeType = reflect.TypeOf((*Scope)(nil))

type registerOptions struct {
	override bool
	key      Key
	keyRef   string
}

type RegisterOption func(*registerOptions)

// Override allows replacing an existing registration instead of failing
// with an overriding-service error.
func Override() RegisterOption {
	return func(o *registerOptions) {
		o.override = true
	}
}

// WithKey sets the registration key explicitly instead of inferring it
// from the builder.
func WithKey(key Key) RegisterOption {
	return func(o *registerOptions) {
		o.key = key
	}
}

// WithKeyRef defers the registration key to a type name resolved against
// the alias table when plans are first compiled. An unresolvable reference
// fails the resolve with a factory-missing-context error.
func WithKeyRef(name string) RegisterOption {
	return func(o *registerOptions) {
		o.keyRef = name
	}
}

// Register binds key to a builder under the given lifetime. Registering a
// key twice fails with an overriding-service error unless Override is
// passed.
func (r *Registry) Register(key Key, lt Lifetime, b Builder, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	if b.err != nil {
		return b.err
	}

	if b.inner.Kind == engine.StructBuilder {
		if err := engine.ValidateBinding(key, b.inner.Type); err != nil {
			return err
		}
	}

	return r.inner.Register(&engine.Registration{
		Key:      key,
		Lifetime: lt,
		Builder:  b.inner,
	}, o.override)
}

// AddAlias maps a name to a key. Aliases participate only in name
// fallback; they never shadow a direct key lookup.
func (r *Registry) AddAlias(name string, key Key) {
	r.inner.AddAlias(name, key)
}

func (r *Registry) Contains(key Key) bool {
	return r.inner.Contains(key)
}

// Keys lists the registered keys in registration order.
func (r *Registry) Keys() []Key {
	return r.inner.Keys()
}

func (r *Registry) Len() int {
	return r.inner.Len()
}

// Generation returns the mutation counter providers compile against.
func (r *Registry) Generation() uint64 {
	return r.inner.Generation()
}

// BuildProvider returns the read-mostly view over the current
// registrations. The provider compiles plans lazily on first use.
func (r *Registry) BuildProvider() *Provider {
	overlay := engine.NewOverlay(r.inner)
	return &Provider{
		reg:      r,
		overlay:  overlay,
		engine:   engine.NewEngine(overlay, r.cfg.logger, r.cfg.resolveHooks),
		tracking: r.cfg.tracking,
	}
}

// Validate eagerly compiles a plan for every registered key, reporting
// every structural failure without constructing anything.
func (r *Registry) Validate() error {
	return r.defaultProvider().engine.Validate()
}

// Resolve is a convenience over a lazily-built default provider.
func (r *Registry) Resolve(key Key) (any, error) {
	return r.defaultProvider().Get(key)
}

func (r *Registry) defaultProvider() *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.def == nil {
		r.def = r.BuildProvider()
	}
	return r.def
}

func keyForInstance(v any) (Key, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return Key{}, engine.NewError(engine.ErrCodeMissingType,
			"cannot infer a key from a nil instance", nil)
	}
	return typekey.For(t), nil
}
