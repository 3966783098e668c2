package acorn

import (
	"fmt"
	"reflect"
	"sync"
)

// constructor holds the metadata for one declared constructor function.
type constructor struct {
	fn      reflect.Value
	out     reflect.Type
	params  []reflect.Type
	withErr bool
}

func newConstructor(fn interface{}) (constructor, error) {
	val := reflect.ValueOf(fn)
	if !val.IsValid() || val.Kind() != reflect.Func || val.IsNil() {
		return constructor{}, fmt.Errorf("%w: constructor must be a function", ErrInvalidConstructor)
	}

	typ := val.Type()
	if typ.IsVariadic() {
		return constructor{}, fmt.Errorf("%w: variadic constructor %s", ErrInvalidConstructor, typ)
	}
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return constructor{}, fmt.Errorf("%w: constructor must return (T) or (T, error)", ErrInvalidConstructor)
	}
	if typ.NumOut() == 2 && typ.Out(1) != errorType {
		return constructor{}, fmt.Errorf("%w: second return value must be error", ErrInvalidConstructor)
	}

	params := make([]reflect.Type, typ.NumIn())
	for i := range params {
		params[i] = typ.In(i)
	}

	return constructor{
		fn:      val,
		out:     typ.Out(0),
		params:  params,
		withErr: typ.NumOut() == 2,
	}, nil
}

func (c constructor) signature() Signature {
	return Signature{Type: c.out, Params: c.params, invoke: c.call}
}

func (c constructor) call(args []reflect.Value) (reflect.Value, error) {
	out := c.fn.Call(args)
	if c.withErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// constructorTable lists the declared constructors of each type in
// declaration order.
type constructorTable struct {
	mu     sync.RWMutex
	byType map[reflect.Type][]constructor
}

func newConstructorTable() *constructorTable {
	return &constructorTable{byType: make(map[reflect.Type][]constructor)}
}

func (t *constructorTable) add(c constructor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byType[c.out] = append(t.byType[c.out], c)
}

// list returns the constructors declared for typ. The result is capped so
// later declarations never write into it.
func (t *constructorTable) list(typ reflect.Type) []constructor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cs := t.byType[typ]
	return cs[:len(cs):len(cs)]
}

// implicitSignature returns the zero-argument constructor Go provides for
// types without declared constructors. Interfaces, funcs, channels and
// unsafe pointers have none.
func implicitSignature(t reflect.Type) (Signature, bool) {
	var invoke func([]reflect.Value) (reflect.Value, error)

	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return Signature{}, false
	case reflect.Ptr:
		invoke = func([]reflect.Value) (reflect.Value, error) {
			return reflect.New(t.Elem()), nil
		}
	case reflect.Map:
		invoke = func([]reflect.Value) (reflect.Value, error) {
			return reflect.MakeMap(t), nil
		}
	default:
		invoke = func([]reflect.Value) (reflect.Value, error) {
			return reflect.New(t).Elem(), nil
		}
	}

	return Signature{Type: t, invoke: invoke}, true
}

func implicitlyConstructible(t reflect.Type) bool {
	_, ok := implicitSignature(t)
	return ok
}
