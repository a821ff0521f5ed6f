// Package introspect extracts dependency metadata from user types without
// requiring them to reference the container: tagged struct fields stand in
// for constructor parameters, fields promoted from embedded structs stand in
// for inherited attribute declarations, and an optional DependencyKeys
// descriptor overrides per-field keys.
package introspect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/loom-di/loom/internal/typekey"
)

// TagKey marks struct fields that the container should satisfy. Untagged
// fields keep their zero value.
const TagKey = "inject"

// Keyed lets a type declare exact keys for some of its injected fields,
// the way union, parameterized and collection dependencies are expressed.
type Keyed interface {
	DependencyKeys() map[string]typekey.Key
}

var keyedType = reflect.TypeOf((*Keyed)(nil)).Elem()

type Field struct {
	Name     string
	Index    []int
	Type     reflect.Type
	Ref      string
	Optional bool
	Promoted bool
}

type StructInfo struct {
	// Type is the struct type itself; Ptr records whether the registration
	// was made with a pointer type.
	Type reflect.Type
	Ptr  bool

	// Ctor holds the type's own tagged fields in declaration order; Attrs
	// holds tagged fields promoted from embedded structs, embedding order,
	// with names shadowed by Ctor removed.
	Ctor  []Field
	Attrs []Field

	// Overrides maps field names to exact keys, from DependencyKeys.
	Overrides map[string]typekey.Key
}

// InspectStruct gathers the injectable fields of t, which must be a struct
// type or a pointer to one.
func InspectStruct(t reflect.Type) (*StructInfo, error) {
	orig := t
	ptr := false
	if t.Kind() == reflect.Ptr {
		ptr = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot introspect %s: not a struct type", orig)
	}

	info := &StructInfo{Type: t, Ptr: ptr}

	own := make(map[string]bool)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		ref, optional := parseTag(tag)
		info.Ctor = append(info.Ctor, Field{
			Name:     f.Name,
			Index:    f.Index,
			Type:     f.Type,
			Ref:      ref,
			Optional: optional,
		})
		own[f.Name] = true
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		et := f.Type
		if et.Kind() == reflect.Ptr {
			et = et.Elem()
		}
		if et.Kind() != reflect.Struct {
			continue
		}
		collectPromoted(et, f.Index, own, &info.Attrs)
	}

	info.Overrides = dependencyOverrides(t)

	return info, nil
}

func collectPromoted(t reflect.Type, prefix []int, shadowed map[string]bool, out *[]Field) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			et := f.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				collectPromoted(et, append(append([]int(nil), prefix...), i), shadowed, out)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup(TagKey)
		if !ok || shadowed[f.Name] {
			continue
		}
		ref, optional := parseTag(tag)
		*out = append(*out, Field{
			Name:     f.Name,
			Index:    append(append([]int(nil), prefix...), i),
			Type:     f.Type,
			Ref:      ref,
			Optional: optional,
			Promoted: true,
		})
		shadowed[f.Name] = true
	}
}

func dependencyOverrides(t reflect.Type) map[string]typekey.Key {
	switch {
	case t.Implements(keyedType):
		return reflect.Zero(t).Interface().(Keyed).DependencyKeys()
	case reflect.PointerTo(t).Implements(keyedType):
		return reflect.New(t).Interface().(Keyed).DependencyKeys()
	default:
		return nil
	}
}

func parseTag(tag string) (ref string, optional bool) {
	parts := strings.Split(tag, ",")
	ref = parts[0]
	for _, p := range parts[1:] {
		if p == "optional" {
			optional = true
		}
	}
	return ref, optional
}

// FieldKey derives the base lookup key for a field, before alias fallback
// and before the optional wrapper is applied. The second return is false
// when the field has no usable type declaration (type any with no override
// and no ref) and the alias table must be consulted instead.
func (s *StructInfo) FieldKey(f Field) (typekey.Key, bool) {
	if s.Overrides != nil {
		if k, ok := s.Overrides[f.Name]; ok {
			return k, true
		}
	}
	if f.Ref != "" {
		return typekey.Named(f.Ref), true
	}
	if f.Type.Kind() == reflect.Interface && f.Type.NumMethod() == 0 {
		return typekey.Key{}, false
	}
	return typekey.ForField(f.Type), true
}
