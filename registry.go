package acorn

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// binding pairs a type with the factory that produces its instances.
type binding struct {
	typ     reflect.Type
	factory func() (reflect.Value, error)
}

// MapStats reports the effect of a registry mutation.
type MapStats struct {
	Added   int
	Updated int
	Removed int
}

// Registry holds at most one binding per type. Factories run fresh on every
// [Registry.Get] and [Injector.Build]; a factory that returns one captured
// value gives singleton behaviour.
//
// Every mutation invalidates the cached constructor signatures that could
// depend on the affected type before the write lock is released.
type Registry struct {
	mu       sync.RWMutex
	bindings map[reflect.Type]binding

	cache *signatureCache
	log   *zap.Logger
}

func newRegistry(cache *signatureCache, log *zap.Logger) *Registry {
	return &Registry{
		bindings: make(map[reflect.Type]binding),
		cache:    cache,
		log:      log,
	}
}

// Add binds t to factory, replacing any previous binding. The factory must be
// a function with the signature func() X or func() (X, error) where X is
// assignable to t.
func (r *Registry) Add(t reflect.Type, factory interface{}) (MapStats, error) {
	b, err := newBinding(t, factory)
	if err != nil {
		return MapStats{}, err
	}
	return r.put(b), nil
}

// Update is an alias of [Registry.Add].
func (r *Registry) Update(t reflect.Type, factory interface{}) (MapStats, error) {
	return r.Add(t, factory)
}

func (r *Registry) put(b binding) MapStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.bindings[b.typ]
	r.bindings[b.typ] = b
	r.cache.invalidate(b.typ)

	if exists {
		r.log.Debug("binding updated", zap.Stringer("type", b.typ))
		return MapStats{Updated: 1}
	}
	r.log.Debug("binding added", zap.Stringer("type", b.typ))
	return MapStats{Added: 1}
}

// Remove deletes the binding for t, if any. Cached signatures depending on t
// are invalidated either way.
func (r *Registry) Remove(t reflect.Type) MapStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.bindings[t]
	delete(r.bindings, t)
	r.cache.invalidate(t)

	if !exists {
		return MapStats{}
	}
	r.log.Debug("binding removed", zap.Stringer("type", t))
	return MapStats{Removed: 1}
}

// Clear removes every binding and empties the signature cache.
func (r *Registry) Clear() MapStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.bindings)
	r.bindings = make(map[reflect.Type]binding)
	r.cache.clear()

	r.log.Debug("bindings cleared", zap.Int("removed", removed))
	return MapStats{Removed: removed}
}

// IsMapped reports whether t has a binding.
func (r *Registry) IsMapped(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[t]
	return ok
}

// Types returns the bound types in no particular order.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reflect.Type, 0, len(r.bindings))
	for t := range r.bindings {
		out = append(out, t)
	}
	return out
}

// Count returns the number of bindings.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// CachedSignatures returns the number of constructor signatures currently
// cached for unmapped types.
func (r *Registry) CachedSignatures() int {
	return r.cache.len()
}

// Get invokes the factory bound to t. It fails with *[UnmappedTypeError] when
// t has no binding; factory errors are returned unchanged.
func (r *Registry) Get(t reflect.Type) (reflect.Value, error) {
	v, ok, err := r.fetch(t)
	if !ok {
		return reflect.Value{}, &UnmappedTypeError{Type: t}
	}
	return v, err
}

// fetch runs the bound factory outside the lock. ok is false when t is
// unbound.
func (r *Registry) fetch(t reflect.Type) (v reflect.Value, ok bool, err error) {
	r.mu.RLock()
	b, ok := r.bindings[t]
	r.mu.RUnlock()

	if !ok {
		return reflect.Value{}, false, nil
	}
	v, err = b.factory()
	return v, true, err
}

func newBinding(t reflect.Type, factory interface{}) (binding, error) {
	if t == nil {
		return binding{}, fmt.Errorf("%w: nil type", ErrInvalidFactory)
	}

	val := reflect.ValueOf(factory)
	if !val.IsValid() || val.Kind() != reflect.Func || val.IsNil() {
		return binding{}, fmt.Errorf("%w: factory for %s must be a function", ErrInvalidFactory, t)
	}

	typ := val.Type()
	if typ.NumIn() != 0 {
		return binding{}, fmt.Errorf("%w: factory for %s must take no arguments", ErrInvalidFactory, t)
	}
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return binding{}, fmt.Errorf("%w: factory for %s must return (T) or (T, error)", ErrInvalidFactory, t)
	}
	if typ.NumOut() == 2 && typ.Out(1) != errorType {
		return binding{}, fmt.Errorf("%w: second return value of factory for %s must be error", ErrInvalidFactory, t)
	}
	if !typ.Out(0).AssignableTo(t) {
		return binding{}, fmt.Errorf("%w: factory returns %s, not assignable to %s", ErrInvalidFactory, typ.Out(0), t)
	}

	withErr := typ.NumOut() == 2
	return binding{
		typ: t,
		factory: func() (reflect.Value, error) {
			out := val.Call(nil)
			if withErr && !out[1].IsNil() {
				return reflect.Value{}, out[1].Interface().(error)
			}
			return convertTo(out[0], t), nil
		},
	}, nil
}

// convertTo returns v as a value whose static type is t.
func convertTo(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// TypeOf returns the key under which T is bound and built. It works for
// interface types:
//
//	acorn.TypeOf[Entity]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Add binds T to factory, replacing any previous binding. It panics if
// factory is nil.
//
//	acorn.Add[Entity](inj.Mappings(), func() Entity { return &Person{Name: "John"} })
func Add[T any](r *Registry, factory func() T) MapStats {
	t := TypeOf[T]()
	if factory == nil {
		panic(fmt.Sprintf("acorn: nil factory for %s", t))
	}
	return r.put(binding{
		typ: t,
		factory: func() (reflect.Value, error) {
			v := factory()
			return reflect.ValueOf(&v).Elem(), nil
		},
	})
}

// Update is an alias of [Add].
func Update[T any](r *Registry, factory func() T) MapStats {
	return Add(r, factory)
}

// Remove deletes the binding for T.
func Remove[T any](r *Registry) MapStats {
	return r.Remove(TypeOf[T]())
}

// IsMapped reports whether T has a binding.
func IsMapped[T any](r *Registry) bool {
	return r.IsMapped(TypeOf[T]())
}

// Get invokes the factory bound to T.
func Get[T any](r *Registry) (T, error) {
	var zero T
	v, err := r.Get(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return valueAs[T](v), nil
}

// valueAs copies v into a T. Unlike a type assertion on v.Interface() it
// accepts nil interface values.
func valueAs[T any](v reflect.Value) T {
	var out T
	reflect.ValueOf(&out).Elem().Set(v)
	return out
}
