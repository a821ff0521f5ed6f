package loom

import "github.com/loom-di/loom/internal/engine"

// Module groups related registrations so they can be applied to a registry
// together. Modules can include other modules; included modules apply
// first.
type Module struct {
	name       string
	entries    []func(r *Registry) error
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Include(sub *Module) *Module {
	m.submodules = append(m.submodules, sub)
	return m
}

func (m *Module) apply(r *Registry) error {
	for _, sub := range m.submodules {
		if err := sub.apply(r); err != nil {
			return err
		}
	}
	for _, entry := range m.entries {
		if err := entry(r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Apply(modules ...*Module) error {
	for _, m := range modules {
		if err := m.apply(r); err != nil {
			return engine.NewError(engine.ErrCodeModuleApplyFailed,
				"failed to apply module "+m.name, err)
		}
	}
	return nil
}

func ModuleAddTransient[T any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddTransient[T](r, opts...)
	})
	return m
}

func ModuleAddScoped[T any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddScoped[T](r, opts...)
	})
	return m
}

func ModuleAddSingleton[T any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddSingleton[T](r, opts...)
	})
	return m
}

func ModuleAddTransientAs[I, C any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddTransientAs[I, C](r, opts...)
	})
	return m
}

func ModuleAddScopedAs[I, C any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddScopedAs[I, C](r, opts...)
	})
	return m
}

func ModuleAddSingletonAs[I, C any](m *Module, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddSingletonAs[I, C](r, opts...)
	})
	return m
}

func ModuleAddSingletonFactory(m *Module, fn any, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddSingletonFactory(r, fn, opts...)
	})
	return m
}

func ModuleAddScopedFactory(m *Module, fn any, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddScopedFactory(r, fn, opts...)
	})
	return m
}

func ModuleAddTransientFactory(m *Module, fn any, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddTransientFactory(r, fn, opts...)
	})
	return m
}

func ModuleAddInstance(m *Module, v any, opts ...RegisterOption) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		return AddInstance(r, v, opts...)
	})
	return m
}

func ModuleAddAlias(m *Module, name string, key Key) *Module {
	m.entries = append(m.entries, func(r *Registry) error {
		r.AddAlias(name, key)
		return nil
	})
	return m
}
