package loom

import (
	"reflect"

	"github.com/loom-di/loom/internal/introspect"
	"github.com/loom-di/loom/internal/typekey"
)

// Key identifies a registration: a concrete type, a parameterized generic
// form, a sum type, a name alias or a collection shape. Keys compare
// structurally; see the Key* and *Of constructors.
type Key = typekey.Key

// Keyed lets a type declare exact keys for some of its injected fields,
// overriding what the field's Go type would derive. This is how union,
// parameterized and collection dependencies are expressed on fields.
type Keyed = introspect.Keyed

// TagKey is the struct tag that marks injectable fields:
//
//	type Service struct {
//	    DB    *Database  `inject:""`          // by field type
//	    Log   any        `inject:"logger"`    // by name reference
//	    Cache *Cache     `inject:",optional"` // zero value on miss
//	}
const TagKey = introspect.TagKey

// KeyOf returns the concrete key for T.
func KeyOf[T any]() Key {
	return typekey.Of[T]()
}

// KeyFor returns the concrete key for a reflected type.
func KeyFor(t reflect.Type) Key {
	return typekey.For(t)
}

// Optional wraps k into Union(k, none): a dependency satisfied with nil
// when nothing is registered for k.
func Optional(k Key) Key {
	return typekey.OptionalOf(k)
}

// OptionalOf is shorthand for Optional(KeyOf[T]()).
func OptionalOf[T any]() Key {
	return typekey.OptionalOf(typekey.Of[T]())
}

// Union builds a sum key. A union is a key of its own: it never matches a
// registration made under one of its members, and requesting a member
// never finds a registration made under the union.
func Union(members ...Key) Key {
	return typekey.UnionOf(members...)
}

// Named builds a name key, matched against the alias table when a
// dependency site carries no type declaration.
func Named(name string) Key {
	return typekey.Named(name)
}

// Parameterized builds a generic key from an erased base and its argument
// keys. Distinct argument tuples are distinct keys resolved by the same
// erased implementation.
func Parameterized(base Key, args ...Key) Key {
	return typekey.ParameterizedOf(base, args...)
}

// TypeVar is a free type-variable placeholder for parameterized keys. It
// equals only an identical placeholder; no substitution is attempted
// during lookup.
func TypeVar(name string) Key {
	return typekey.Var(name)
}

// Collection key constructors. A collection registration is satisfied as a
// whole, normally by a factory returning the collection value; the planner
// never assembles one from element registrations.

func SequenceOf(elem Key) Key {
	return typekey.CollectionOf(typekey.Sequence, elem)
}

func SetOf(elem Key) Key {
	return typekey.CollectionOf(typekey.Set, elem)
}

func MappingOf(key, value Key) Key {
	return typekey.CollectionOf(typekey.Mapping, key, value)
}

func IterableOf(elem Key) Key {
	return typekey.CollectionOf(typekey.Iterable, elem)
}

func TupleOf(elem Key) Key {
	return typekey.CollectionOf(typekey.Tuple, elem)
}
