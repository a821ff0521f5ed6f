package introspect

import (
	"fmt"
	"reflect"
)

var (
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
	reflectTypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()
)

// FactoryInfo describes a user factory callable. Only three shapes are
// accepted: func() T, func(scope) T and func(scope, reflect.Type) T, each
// optionally returning (T, error).
type FactoryInfo struct {
	Func     reflect.Value
	Arity    int
	Result   reflect.Type
	HasError bool
}

// InspectFactory validates fn against the accepted shapes. scopeType is the
// container's activation-scope type, supplied by the caller so that this
// package stays independent of the public API.
func InspectFactory(fn any, scopeType reflect.Type) (*FactoryInfo, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("factory must be a function, got %T", fn)
	}

	t := v.Type()

	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != scopeType {
			return nil, fmt.Errorf("factory parameter must be %s, got %s", scopeType, t.In(0))
		}
	case 2:
		if t.In(0) != scopeType {
			return nil, fmt.Errorf("factory parameter must be %s, got %s", scopeType, t.In(0))
		}
		if t.In(1) != reflectTypeType {
			return nil, fmt.Errorf("factory second parameter must be reflect.Type, got %s", t.In(1))
		}
	default:
		return nil, fmt.Errorf("factory accepts at most (scope, reflect.Type), got %d parameters", t.NumIn())
	}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, fmt.Errorf("factory must return a service value, not only error")
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("factory second return value must be error, got %s", t.Out(1))
		}
	default:
		return nil, fmt.Errorf("factory must return T or (T, error), got %d values", t.NumOut())
	}

	return &FactoryInfo{
		Func:     v,
		Arity:    t.NumIn(),
		Result:   t.Out(0),
		HasError: t.NumOut() == 2,
	}, nil
}

// ResultIsUntyped reports whether the factory's declared result carries no
// usable type information (a bare interface{} return).
func (f *FactoryInfo) ResultIsUntyped() bool {
	return f.Result.Kind() == reflect.Interface && f.Result.NumMethod() == 0
}
