package typekey

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

type Kind uint8

const (
	Concrete Kind = iota
	Parameterized
	Union
	Name
	Collection
	Variable
	None
)

type CollectionKind uint8

const (
	Sequence CollectionKind = iota
	Set
	Mapping
	Iterable
	Tuple
)

func (k CollectionKind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case Set:
		return "set"
	case Mapping:
		return "mapping"
	case Iterable:
		return "iterable"
	case Tuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Key identifies a registration. Keys are value types; two keys are
// interchangeable iff their IDs are equal. Union member order carries no
// meaning: members are sorted during construction.
type Key struct {
	kind  Kind
	typ   reflect.Type
	name  string
	args  []Key
	ckind CollectionKind
	id    string
}

var none = Key{kind: None, id: "<none>"}

// NoneKey is the sentinel member that makes a Union optional.
func NoneKey() Key { return none }

func Of[T any]() Key {
	return For(typeOf[T]())
}

func For(t reflect.Type) Key {
	return Key{kind: Concrete, typ: t, id: typeID(t)}
}

func Named(name string) Key {
	return Key{kind: Name, name: name, id: "#" + name}
}

func Var(name string) Key {
	return Key{kind: Variable, name: name, id: "$" + name}
}

func ParameterizedOf(base Key, args ...Key) Key {
	ids := make([]string, len(args))
	for i, a := range args {
		ids[i] = a.id
	}
	return Key{
		kind: Parameterized,
		typ:  base.typ,
		args: args,
		id:   base.id + "[" + strings.Join(ids, ",") + "]",
	}
}

// UnionOf builds a sum key. Members are deduplicated and sorted so that
// equality is set equality. Nested unions are flattened.
func UnionOf(members ...Key) Key {
	flat := make([]Key, 0, len(members))
	for _, m := range members {
		if m.kind == Union {
			flat = append(flat, m.args...)
			continue
		}
		flat = append(flat, m)
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].id < flat[j].id })

	dedup := flat[:0]
	for i, m := range flat {
		if i > 0 && flat[i-1].id == m.id {
			continue
		}
		dedup = append(dedup, m)
	}

	ids := make([]string, len(dedup))
	for i, m := range dedup {
		ids[i] = m.id
	}

	return Key{
		kind: Union,
		args: append([]Key(nil), dedup...),
		id:   "union{" + strings.Join(ids, "|") + "}",
	}
}

// OptionalOf is sugar for UnionOf(k, NoneKey()).
func OptionalOf(k Key) Key {
	return UnionOf(k, none)
}

func CollectionOf(kind CollectionKind, elems ...Key) Key {
	ids := make([]string, len(elems))
	for i, e := range elems {
		ids[i] = e.id
	}
	return Key{
		kind:  Collection,
		ckind: kind,
		args:  elems,
		id:    kind.String() + "<" + strings.Join(ids, ",") + ">",
	}
}

func (k Key) Kind() Kind               { return k.kind }
func (k Key) Type() reflect.Type       { return k.typ }
func (k Key) Name() string             { return k.name }
func (k Key) Args() []Key              { return append([]Key(nil), k.args...) }
func (k Key) CollKind() CollectionKind { return k.ckind }
func (k Key) ID() string               { return k.id }
func (k Key) IsZero() bool             { return k.id == "" }
func (k Key) Equal(other Key) bool     { return k.id == other.id }

// IsOptional reports whether k is a Union of exactly one real member plus
// the none sentinel.
func (k Key) IsOptional() bool {
	_, ok := k.OptionalElem()
	return ok
}

// OptionalElem returns the non-sentinel member of an optional union.
func (k Key) OptionalElem() (Key, bool) {
	if k.kind != Union || len(k.args) != 2 {
		return Key{}, false
	}
	if k.args[0].kind == None {
		return k.args[1], true
	}
	if k.args[1].kind == None {
		return k.args[0], true
	}
	return Key{}, false
}

func (k Key) String() string {
	switch k.kind {
	case Concrete:
		return shortName(k.typ)
	case Parameterized:
		parts := make([]string, len(k.args))
		for i, a := range k.args {
			parts[i] = a.String()
		}
		return shortName(k.typ) + "[" + strings.Join(parts, ", ") + "]"
	case Union:
		if elem, ok := k.OptionalElem(); ok {
			return "Optional[" + elem.String() + "]"
		}
		parts := make([]string, len(k.args))
		for i, a := range k.args {
			parts[i] = a.String()
		}
		return "Union[" + strings.Join(parts, " | ") + "]"
	case Name:
		return "#" + k.name
	case Variable:
		return "$" + k.name
	case Collection:
		parts := make([]string, len(k.args))
		for i, a := range k.args {
			parts[i] = a.String()
		}
		return k.ckind.String() + "[" + strings.Join(parts, ", ") + "]"
	case None:
		return "<none>"
	default:
		return k.id
	}
}

// ForField derives the lookup key for a dependency site of type t,
// recognizing the container shapes resolved as whole collections.
func ForField(t reflect.Type) Key {
	switch t.Kind() {
	case reflect.Slice:
		return CollectionOf(Sequence, For(t.Elem()))
	case reflect.Map:
		return CollectionOf(Mapping, For(t.Key()), For(t.Elem()))
	case reflect.Array:
		return CollectionOf(Tuple, For(t.Elem()))
	case reflect.Func:
		if elem, ok := seqElem(t); ok {
			return CollectionOf(Iterable, For(elem))
		}
		return For(t)
	default:
		return For(t)
	}
}

// seqElem recognizes the iter.Seq[T] shape: func(yield func(T) bool).
func seqElem(t reflect.Type) (reflect.Type, bool) {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 {
		return nil, false
	}
	if yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	return yield.In(0), true
}

var typeIDCache sync.Map

func typeID(t reflect.Type) string {
	if cached, ok := typeIDCache.Load(t); ok {
		return cached.(string)
	}

	id := buildTypeID(t)
	typeIDCache.Store(t, id)
	return id
}

func buildTypeID(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeID(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeID(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeID(t.Key()) + "]" + buildTypeID(t.Elem())
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.String()
	}
}

func typeOf[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return t
}

// SimpleName returns the unqualified name of the key's underlying type,
// with pointer indirection stripped. Empty for non-concrete keys and for
// unnamed types.
func (k Key) SimpleName() string {
	if k.kind != Concrete || k.typ == nil {
		return ""
	}
	t := k.typ
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func shortName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// SnakeCase converts a type name to snake_case. A separator is inserted
// before an upper-case rune that follows a lower-case rune or digit, and
// before the final rune of an upper-case run that is followed by a
// lower-case rune, so acronym runs stay together: HTTPServer -> http_server,
// MyID2X -> my_id2_x.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if isUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				switch {
				case isLower(prev) || isDigit(prev):
					b.WriteByte('_')
				case isUpper(prev) && i+1 < len(runes) && isLower(runes[i+1]):
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
