package engine

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/loom-di/loom/internal/introspect"
	"github.com/loom-di/loom/internal/lifetime"
	"github.com/loom-di/loom/internal/typekey"
)

type BuilderKind uint8

const (
	StructBuilder BuilderKind = iota
	FactoryBuilder
	InstanceBuilder
	noneBuilder
)

// Builder describes how an instance is produced. Exactly one of the
// kind-specific fields is populated.
type Builder struct {
	Kind     BuilderKind
	Type     reflect.Type
	Struct   *introspect.StructInfo
	Factory  *introspect.FactoryInfo
	Instance reflect.Value
}

type Registration struct {
	Key      typekey.Key
	Lifetime lifetime.Lifetime
	Builder  Builder

	// KeyRef defers the key to a name resolved against the alias table at
	// planning time. Registrations with a KeyRef are parked until then.
	KeyRef string
}

type RegisterHook func(key string)

// Registry is the mutable registration table. Every successful mutation
// advances the generation counter, which providers use to invalidate their
// plan and singleton caches.
type Registry struct {
	mu       sync.RWMutex
	regs     map[string]*Registration
	order    []typekey.Key
	aliases  map[string][]typekey.Key
	deferred []*Registration
	strict   bool
	gen      uint64
	logger   *slog.Logger
	onAdd    []RegisterHook
}

func NewRegistry(strict bool, logger *slog.Logger, hooks []RegisterHook) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		regs:    make(map[string]*Registration),
		aliases: make(map[string][]typekey.Key),
		strict:  strict,
		logger:  logger,
		onAdd:   hooks,
	}
}

func (r *Registry) Register(reg *Registration, override bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg.KeyRef != "" && reg.Key.IsZero() {
		r.deferred = append(r.deferred, reg)
		r.gen++
		r.logger.Debug("registration deferred", "ref", reg.KeyRef)
		r.fireHooks("#" + reg.KeyRef)
		return nil
	}

	return r.installLocked(reg, override, true)
}

// installLocked stores a registration. bump is false when a deferred
// registration materializes during planning: that is not a user mutation
// and must not invalidate provider caches.
func (r *Registry) installLocked(reg *Registration, override, bump bool) error {
	id := reg.Key.ID()
	_, exists := r.regs[id]
	if exists && !override {
		return errOverridingService(reg.Key.String())
	}

	r.regs[id] = reg
	if !exists {
		r.order = append(r.order, reg.Key)
	}

	if !r.strict {
		r.deriveAliasesLocked(reg.Key)
	}

	if bump {
		r.gen++
	}
	r.logger.Debug("service registered",
		"key", reg.Key.String(), "lifetime", reg.Lifetime.String())
	r.fireHooks(reg.Key.String())
	return nil
}

// deriveAliasesLocked adds the automatic name entries for a concrete key:
// the simple type name, its lower-cased form and its snake_cased form.
func (r *Registry) deriveAliasesLocked(key typekey.Key) {
	name := key.SimpleName()
	if name == "" {
		return
	}

	r.addAliasLocked(name, key)
	r.addAliasLocked(strings.ToLower(name), key)
	r.addAliasLocked(typekey.SnakeCase(name), key)
}

func (r *Registry) AddAlias(name string, key typekey.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addAliasLocked(name, key)
	r.gen++
}

func (r *Registry) addAliasLocked(name string, key typekey.Key) {
	for _, existing := range r.aliases[name] {
		if existing.Equal(key) {
			return
		}
	}
	r.aliases[name] = append(r.aliases[name], key)
}

// AliasCandidates returns the keys registered under name, trying the exact
// spelling first and falling back to the lower-cased one.
func (r *Registry) AliasCandidates(name string) []typekey.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cands := r.aliases[name]; len(cands) > 0 {
		return append([]typekey.Key(nil), cands...)
	}
	if cands := r.aliases[strings.ToLower(name)]; len(cands) > 0 {
		return append([]typekey.Key(nil), cands...)
	}
	return nil
}

func (r *Registry) Lookup(k typekey.Key) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.regs[k.ID()]
	return reg, ok
}

func (r *Registry) Contains(k typekey.Key) bool {
	_, ok := r.Lookup(k)
	return ok
}

func (r *Registry) Keys() []typekey.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]typekey.Key(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.regs)
}

func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.gen
}

// EnsureDeferred materializes registrations whose key was deferred to a
// name reference. Called by the planner before it consults the table.
func (r *Registry) EnsureDeferred() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.deferred) == 0 {
		return nil
	}

	pending := r.deferred
	r.deferred = nil

	for i, reg := range pending {
		cands := r.aliases[reg.KeyRef]
		if len(cands) == 0 {
			cands = r.aliases[strings.ToLower(reg.KeyRef)]
		}
		if len(cands) != 1 {
			// Park the unprocessed tail so a later registration can still
			// fix the table up.
			r.deferred = append(r.deferred, pending[i:]...)
			return errFactoryMissingContext(reg.KeyRef)
		}

		reg.Key = cands[0]
		if err := r.installLocked(reg, false, false); err != nil {
			r.deferred = append(r.deferred, pending[i+1:]...)
			return err
		}
	}

	return nil
}

func (r *Registry) fireHooks(key string) {
	for _, hook := range r.onAdd {
		hook(key)
	}
}

// ValidateBinding enforces the registration rule for binding a concrete
// type under a foreign key: an interface key accepts any implementation
// (the protocol case); a concrete key accepts only types that embed it.
func ValidateBinding(key typekey.Key, concrete reflect.Type) error {
	if key.Kind() != typekey.Concrete {
		return nil
	}

	kt := key.Type()
	if kt == concrete {
		return nil
	}

	if kt.Kind() == reflect.Interface {
		if concrete.Implements(kt) {
			return nil
		}
		return errTypeMismatch(key.String(),
			fmt.Sprintf("%s does not implement %s", concrete, kt))
	}

	if embedsType(concrete, kt) {
		return nil
	}

	return errTypeMismatch(key.String(),
		fmt.Sprintf("%s is not a subtype of non-interface %s", concrete, kt))
}

func embedsType(concrete, base reflect.Type) bool {
	t := concrete
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	bt := base
	for bt.Kind() == reflect.Ptr {
		bt = bt.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft == bt {
			return true
		}
		if ft.Kind() == reflect.Struct && embedsType(ft, bt) {
			return true
		}
	}
	return false
}
