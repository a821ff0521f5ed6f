package engine

import (
	"fmt"
	"reflect"
)

// Activation is the per-resolution state behind a public scope: the scoped
// instance cache, the stack of currently-activating parent types and the
// scope value handed to factories.
type Activation struct {
	scoped   map[string]any
	stack    []reflect.Type
	scopeArg reflect.Value
}

func NewActivation(scopeArg reflect.Value) *Activation {
	return &Activation{
		scoped:   make(map[string]any),
		scopeArg: scopeArg,
	}
}

// Clear drops the scoped instances. Called when the owning scope closes.
func (a *Activation) Clear() {
	a.scoped = make(map[string]any)
}

// ActivatingType returns the nearest parent type of the current
// activation, or nil at the root.
func (a *Activation) ActivatingType() reflect.Type {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

func (e *Engine) activate(n *Node, act *Activation) (any, error) {
	switch n.Lifetime {
	case singletonLifetime:
		id := n.Key.ID()

		e.mu.RLock()
		v, ok := e.singletons[id]
		e.mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := e.build(n, act)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		if cached, ok := e.singletons[id]; ok {
			v = cached
		} else {
			e.singletons[id] = v
		}
		e.mu.Unlock()
		return v, nil

	case scopedLifetime:
		id := n.Key.ID()
		if v, ok := act.scoped[id]; ok {
			return v, nil
		}

		v, err := e.build(n, act)
		if err != nil {
			return nil, err
		}
		act.scoped[id] = v
		return v, nil

	default:
		return e.build(n, act)
	}
}

func (e *Engine) build(n *Node, act *Activation) (any, error) {
	switch n.Builder.Kind {
	case noneBuilder:
		return nil, nil

	case InstanceBuilder:
		return n.Builder.Instance.Interface(), nil

	case FactoryBuilder:
		return e.invokeFactory(n, act)

	case StructBuilder:
		return e.construct(n, act)

	default:
		return nil, NewError(ErrCodeUnknown, "unhandled builder kind", nil).WithKey(n.Key.String())
	}
}

func (e *Engine) invokeFactory(n *Node, act *Activation) (any, error) {
	f := n.Builder.Factory

	var args []reflect.Value
	switch f.Arity {
	case 1:
		args = []reflect.Value{act.scopeArg}
	case 2:
		activating := reflect.Zero(reflectTypeType)
		if t := act.ActivatingType(); t != nil {
			activating = reflect.ValueOf(t)
		}
		args = []reflect.Value{act.scopeArg, activating}
	}

	results := f.Func.Call(args)

	if f.HasError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

func (e *Engine) construct(n *Node, act *Activation) (any, error) {
	info := n.Builder.Struct
	pv := reflect.New(info.Type)

	act.stack = append(act.stack, n.Builder.Type)
	defer func() { act.stack = act.stack[:len(act.stack)-1] }()

	for _, edge := range n.Ctor {
		if err := e.activateEdge(n, edge, pv, act); err != nil {
			return nil, err
		}
	}
	for _, edge := range n.Attrs {
		if err := e.activateEdge(n, edge, pv, act); err != nil {
			return nil, err
		}
	}

	if info.Ptr {
		return pv.Interface(), nil
	}
	return pv.Elem().Interface(), nil
}

func (e *Engine) activateEdge(n *Node, edge Edge, pv reflect.Value, act *Activation) error {
	if edge.Mode == NoneOnMiss {
		return nil
	}

	v, err := e.activate(edge.Node, act)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}

	fv := pv.Elem().FieldByIndex(edge.Index)
	if !rv.Type().AssignableTo(fv.Type()) {
		return errTypeMismatch(n.Key.String(),
			fmt.Sprintf("cannot assign %s to field %s of type %s", rv.Type(), edge.Name, fv.Type()))
	}

	fv.Set(rv)
	return nil
}

var reflectTypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()
