// Package loom provides a non-intrusive dependency injection container for
// Go. Types resolved by the container stay plain Go types: dependencies are
// declared through an `inject` struct tag (or an optional DependencyKeys
// descriptor), and the container wires the object graph by inspecting type
// metadata alone.
//
// # Quick Start
//
// Register services on a registry, build a provider, resolve:
//
//	r := loom.NewRegistry()
//
//	_ = loom.AddSingleton[*Database](r)
//	_ = loom.AddTransient[*UserService](r)
//
//	p := r.BuildProvider()
//	svc, err := loom.Get[*UserService](p)
//
// Dependencies are tagged struct fields:
//
//	type UserService struct {
//	    DB    *Database `inject:""`
//	    Cache *Cache    `inject:",optional"` // nil when unregistered
//	}
//
// Fields promoted from embedded structs are satisfied too, after the
// type's own fields; a field declared on the type shadows a promoted field
// of the same name. Untagged fields keep their zero value.
//
// # Lifetimes
//
// Transient — a fresh instance per dependency edge. Scoped — one instance
// per activation scope. Singleton — one instance per provider.
//
//	_ = loom.AddScoped[*RequestContext](r)
//
//	s := p.CreateScope()
//	defer s.Close()
//	ctx1, _ := loom.GetScoped[*RequestContext](s)
//	ctx2, _ := loom.GetScoped[*RequestContext](s) // same instance
//
// # Interfaces and Implementations
//
// Bind an interface key to a concrete implementation. Only the interface
// key becomes resolvable:
//
//	_ = loom.AddTransientAs[UserRepository, *PostgresUserRepo](r)
//
// # Factories
//
// Factories are callables of one of three shapes — func() T,
// func(*loom.Scope) T, func(*loom.Scope, reflect.Type) T — each optionally
// returning (T, error). The key is inferred from the return type:
//
//	_ = loom.AddSingletonFactory(r, func(s *loom.Scope) (*Database, error) {
//	    cfg, err := loom.GetScoped[*Config](s)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return Open(cfg.DSN)
//	})
//
// # Keys Beyond Types
//
// Optional, union, parameterized-generic and collection forms are keys of
// their own, distinct from their members:
//
//	loom.Optional(loom.KeyOf[*Cache]())
//	loom.Union(loom.KeyOf[*Postgres](), loom.KeyOf[*Sqlite]())
//	loom.Parameterized(loom.KeyOf[*Repo](), loom.KeyOf[Product]())
//	loom.SequenceOf(loom.KeyOf[Widget]())
//
// A type declares such keys for its fields with the Keyed descriptor:
//
//	func (Report) DependencyKeys() map[string]loom.Key {
//	    return map[string]loom.Key{
//	        "Source": loom.Union(loom.KeyOf[*Postgres](), loom.KeyOf[*Sqlite]()),
//	    }
//	}
//
// # Aliases
//
// Names are a fallback for dependency sites without a type declaration
// (fields of type any). Unless the registry is built WithStrict, each
// concrete registration derives its simple name, lower-cased and
// snake_cased forms automatically:
//
//	type Worker struct {
//	    Queue any `inject:"task_queue"`
//	}
//	r.AddAlias("task_queue", loom.KeyOf[*RedisQueue]())
//
// # Providers and Invalidation
//
// BuildProvider returns the read-mostly handle. Provider.Set adds further
// singletons without invalidating anything; mutating the registry itself
// makes the provider recompile plans and drop cached singletons on next
// use.
//
// # Errors
//
// Every failure the container detects surfaces as a *loom.Error with a
// stable code — cannot-resolve-type, cannot-resolve-parameter,
// circular-dependency, missing-type, factory-missing-context,
// overriding-service — and, for planning failures, the dependency chain
// that led there. An error returned by a user factory is passed back
// unchanged, not wrapped. Plans are
// compiled before anything is constructed, so a resolve either fails
// structurally up front or runs user constructors only.
//
// # What the Container Does Not Do
//
// Construction is synchronous; the engine never awaits. Constructed
// objects are returned as-is: the container never closes or disposes
// resources they hold. Do asynchronous setup outside the container and
// register the result with AddInstance.
package loom
