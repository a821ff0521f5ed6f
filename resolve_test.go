package loom

import (
	"reflect"
	"strings"
	"testing"
)

type plainA struct {
	value int
}

type depB struct {
	A *plainA `inject:""`
}

func TestResolve_TransientBasics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransient[*plainA](r); err != nil {
		t.Fatalf("register A: %v", err)
	}
	if err := AddTransient[*depB](r); err != nil {
		t.Fatalf("register B: %v", err)
	}

	p := r.BuildProvider()

	first, err := Get[*depB](p)
	if err != nil {
		t.Fatalf("resolve B: %v", err)
	}
	second, err := Get[*depB](p)
	if err != nil {
		t.Fatalf("resolve B again: %v", err)
	}

	if first == second {
		t.Error("transient B should be distinct per resolve")
	}
	if first.A == nil || second.A == nil {
		t.Fatal("dependency A was not injected")
	}
	if first.A == second.A {
		t.Error("transient A should be distinct per resolve")
	}
}

type ifaceService interface {
	Ping() string
}

type implService struct{}

func (m *implService) Ping() string { return "pong" }

func TestResolve_InterfaceImplementation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransientAs[ifaceService, *implService](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	p := r.BuildProvider()

	svc, err := Get[ifaceService](p)
	if err != nil {
		t.Fatalf("resolve interface: %v", err)
	}
	if _, ok := svc.(*implService); !ok {
		t.Fatalf("expected *implService, got %T", svc)
	}

	if _, err := Get[*implService](p); !IsCannotResolveType(err) {
		t.Errorf("resolving the concrete type should fail with cannot-resolve-type, got %v", err)
	}
}

type optionalDep struct {
	Dependency *plainA `inject:",optional"`
}

func TestResolve_OptionalUnsatisfied(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := AddTransientFactory(r, func() *plainA { return nil },
		WithKey(OptionalOf[*plainA]()))
	if err != nil {
		t.Fatalf("register optional factory: %v", err)
	}
	if err := AddTransient[*optionalDep](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	b, err := Get[*optionalDep](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Dependency != nil {
		t.Errorf("expected nil dependency, got %v", b.Dependency)
	}
}

func TestResolve_OptionalSatisfiedByMember(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransient[*plainA](r); err != nil {
		t.Fatalf("register A: %v", err)
	}
	if err := AddTransient[*optionalDep](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	b, err := Get[*optionalDep](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Dependency == nil {
		t.Error("expected dependency to be satisfied by the registered member")
	}
}

func TestResolve_OptionalMissingLeavesZero(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransient[*optionalDep](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	b, err := Get[*optionalDep](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Dependency != nil {
		t.Error("unregistered optional dependency should stay nil")
	}
}

type unionB struct {
	value int
}

type unionConsumer struct {
	Dependency any `inject:""`
}

func (unionConsumer) DependencyKeys() map[string]Key {
	return map[string]Key{
		"Dependency": Union(KeyOf[*plainA](), KeyOf[*unionB]()),
	}
}

func TestResolve_UnionKeyIdentity(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(
		Union(KeyOf[*plainA](), KeyOf[*unionB]()),
		Transient,
		Factory(func() *plainA { return &plainA{value: 7} }),
	)
	if err != nil {
		t.Fatalf("register union: %v", err)
	}
	if err := AddTransient[*unionConsumer](r); err != nil {
		t.Fatalf("register consumer: %v", err)
	}

	p := r.BuildProvider()

	c, err := Get[*unionConsumer](p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	a, ok := c.Dependency.(*plainA)
	if !ok {
		t.Fatalf("expected *plainA behind the union, got %T", c.Dependency)
	}
	if a.value != 7 {
		t.Errorf("unexpected value %d", a.value)
	}

	// The member alone never matches the union registration.
	if _, err := Get[*plainA](p); !IsCannotResolveType(err) {
		t.Errorf("expected cannot-resolve-type for the bare member, got %v", err)
	}
}

type chicken struct {
	Egg *egg `inject:""`
}

type egg struct {
	Chicken *chicken `inject:""`
}

func TestResolve_CircularDependency(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransient[*chicken](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddTransient[*egg](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := Get[*chicken](r.BuildProvider())
	if !IsCircularDependency(err) {
		t.Fatalf("expected circular-dependency, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "chicken") || !strings.Contains(msg, "egg") {
		t.Errorf("chain should name both types: %s", msg)
	}
}

type product struct{ id int }
type customer struct{ id int }

type repo struct {
	calls int
}

func TestResolve_ParameterizedKeys(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	productRepo := Parameterized(KeyOf[*repo](), KeyOf[product]())
	customerRepo := Parameterized(KeyOf[*repo](), KeyOf[customer]())

	if err := r.Register(productRepo, Singleton, Struct[*repo]()); err != nil {
		t.Fatalf("register product repo: %v", err)
	}
	if err := r.Register(customerRepo, Singleton, Struct[*repo]()); err != nil {
		t.Fatalf("register customer repo: %v", err)
	}

	p := r.BuildProvider()

	rp, err := GetKey[*repo](p, productRepo)
	if err != nil {
		t.Fatalf("resolve product repo: %v", err)
	}
	rc, err := GetKey[*repo](p, customerRepo)
	if err != nil {
		t.Fatalf("resolve customer repo: %v", err)
	}

	if rp == rc {
		t.Error("distinct parameterizations should yield distinct instances")
	}

	// The erased base alone is not registered.
	if _, err := Get[*repo](p); !IsCannotResolveType(err) {
		t.Errorf("expected cannot-resolve-type for the erased base, got %v", err)
	}
}

type aliasConsumer struct {
	PlainA any `inject:""`
}

func TestResolve_AliasFallbackForUntypedField(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddSingleton[*plainA](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddTransient[*aliasConsumer](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, err := Get[*aliasConsumer](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := c.PlainA.(*plainA); !ok {
		t.Fatalf("expected alias fallback to inject *plainA, got %T", c.PlainA)
	}
}

func TestResolve_AliasNeverUsedForTypedField(t *testing.T) {
	t.Parallel()

	type otherA struct{ value int }
	type wantsOther struct {
		Dep *otherA `inject:""`
	}

	r := NewRegistry()
	if err := AddSingleton[*plainA](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	// An alias pointing the field's name at a registered type must not
	// rescue a typed field whose own key is unregistered.
	r.AddAlias("Dep", KeyOf[*plainA]())
	if err := AddTransient[*wantsOther](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := Get[*wantsOther](r.BuildProvider())
	if !IsCannotResolveType(err) {
		t.Fatalf("typed field must not fall back to aliases, got %v", err)
	}
}

type refConsumer struct {
	Store any `inject:"database"`
}

type database struct{ dsn string }

func TestResolve_TagReference(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddSingleton[*database](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddTransient[*refConsumer](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, err := Get[*refConsumer](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := c.Store.(*database); !ok {
		t.Fatalf("expected tag reference to inject *database, got %T", c.Store)
	}
}

func TestResolve_TagReferenceUnresolvable(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddTransient[*refConsumer](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := Get[*refConsumer](r.BuildProvider())
	if !IsCannotResolveParameter(err) {
		t.Fatalf("expected cannot-resolve-parameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "Store") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestResolve_StrictDisablesDerivedAliases(t *testing.T) {
	t.Parallel()

	r := NewRegistry(WithStrict())
	if err := AddSingleton[*database](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddTransient[*refConsumer](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := Get[*refConsumer](r.BuildProvider()); !IsCannotResolveParameter(err) {
		t.Fatalf("strict mode should disable derived aliases, got %v", err)
	}

	// An explicit alias still works.
	r.AddAlias("database", KeyOf[*database]())
	if _, err := Get[*refConsumer](r.BuildProvider()); err != nil {
		t.Fatalf("explicit alias should resolve in strict mode: %v", err)
	}
}

type widget struct{ id int }

type widgetRack struct {
	Widgets []widget `inject:""`
}

func TestResolve_CollectionSatisfiedWhole(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := AddSingletonFactory(r, func() []widget {
		return []widget{{id: 1}, {id: 2}}
	})
	if err != nil {
		t.Fatalf("register collection factory: %v", err)
	}
	if err := AddTransient[*widgetRack](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	p := r.BuildProvider()

	rack, err := Get[*widgetRack](p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rack.Widgets) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(rack.Widgets))
	}

	ws, err := GetKey[[]widget](p, SequenceOf(KeyOf[widget]()))
	if err != nil {
		t.Fatalf("resolve sequence key: %v", err)
	}
	if len(ws) != 2 {
		t.Errorf("expected 2 widgets, got %d", len(ws))
	}

	// Registering elements does not let the planner synthesize a
	// collection that was never registered.
	r2 := NewRegistry()
	if err := AddTransient[*widget](r2); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r2.Resolve(SequenceOf(KeyOf[*widget]())); !IsCannotResolveType(err) {
		t.Errorf("collections must not be synthesized from elements, got %v", err)
	}
}

type loggerFor struct {
	owner reflect.Type
}

type loggerOwner struct {
	Log *loggerFor `inject:""`
}

func TestResolve_FactoryReceivesActivatingType(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := AddTransientFactory(r, func(s *Scope, owner reflect.Type) *loggerFor {
		return &loggerFor{owner: owner}
	})
	if err != nil {
		t.Fatalf("register factory: %v", err)
	}
	if err := AddTransient[*loggerOwner](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	p := r.BuildProvider()

	o, err := Get[*loggerOwner](p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if o.Log.owner != reflect.TypeOf(&loggerOwner{}) {
		t.Errorf("factory should see the activating parent type, got %v", o.Log.owner)
	}

	// At the root there is no activating parent.
	l, err := Get[*loggerFor](p)
	if err != nil {
		t.Fatalf("resolve root factory: %v", err)
	}
	if l.owner != nil {
		t.Errorf("expected nil activating type at the root, got %v", l.owner)
	}
}

type scopedConfig struct{ dsn string }

type factoryUser struct {
	DB *database `inject:""`
}

func TestResolve_FactoryPullsOwnDependencies(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddInstance(r, &scopedConfig{dsn: "postgres://x"}); err != nil {
		t.Fatalf("register config: %v", err)
	}
	err := AddSingletonFactory(r, func(s *Scope) (*database, error) {
		cfg, err := GetScoped[*scopedConfig](s)
		if err != nil {
			return nil, err
		}
		return &database{dsn: cfg.dsn}, nil
	})
	if err != nil {
		t.Fatalf("register factory: %v", err)
	}
	if err := AddTransient[*factoryUser](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := Get[*factoryUser](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.DB.dsn != "postgres://x" {
		t.Errorf("factory did not see its own dependencies: %q", u.DB.dsn)
	}
}

type base struct {
	Root *plainA `inject:""`
	Name string
}

type derived struct {
	base
	Own *database `inject:""`
}

func TestResolve_EmbeddedAttributesInjected(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := AddSingleton[*plainA](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddSingleton[*database](r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddTransient[*derived](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	d, err := Get[*derived](r.BuildProvider())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.Own == nil {
		t.Error("own field not injected")
	}
	if d.Root == nil {
		t.Error("promoted embedded field not injected")
	}
}

func TestResolve_FactoryErrorPropagates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := AddTransientFactory(r, func() (*database, error) {
		return nil, errBoom
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = Get[*database](r.BuildProvider())
	if err != errBoom {
		t.Fatalf("factory errors must propagate as-is, got %v", err)
	}
}

var errBoom = &customError{"boom"}

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }
