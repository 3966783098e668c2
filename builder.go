package acorn

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Injector builds object graphs. It owns the binding [Registry], the declared
// constructors and the signature cache. Create one with [New] and share it;
// all methods are safe for concurrent use.
type Injector struct {
	mappings *Registry
	ctors    *constructorTable
	cache    *signatureCache

	log     *zap.Logger
	metrics *Metrics
}

// New creates an injector with no bindings and no declared constructors.
func New(opts ...Option) *Injector {
	inj := &Injector{
		ctors: newConstructorTable(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(inj)
	}
	inj.cache = newSignatureCache(inj.log, inj.metrics)
	inj.mappings = newRegistry(inj.cache, inj.log)
	return inj
}

// Mappings returns the binding registry.
func (inj *Injector) Mappings() *Registry {
	return inj.mappings
}

// Declare records constructor functions for their first return type, in the
// order given. A constructor has the signature func(deps...) T or
// func(deps...) (T, error). Either every constructor is declared or, on a
// validation error, none is.
func (inj *Injector) Declare(constructors ...interface{}) error {
	parsed := make([]constructor, 0, len(constructors))
	for _, fn := range constructors {
		c, err := newConstructor(fn)
		if err != nil {
			return err
		}
		parsed = append(parsed, c)
	}

	for _, c := range parsed {
		inj.ctors.add(c)
		inj.cache.invalidate(c.out)
		inj.log.Debug("constructor declared",
			zap.Stringer("type", c.out),
			zap.Int("params", len(c.params)),
		)
	}
	return nil
}

// Signature returns the cached constructor signature for t, if one has been
// selected. Bound types never have one. Params is a copy owned by the caller.
func (inj *Injector) Signature(t reflect.Type) (Signature, bool) {
	sig, ok := inj.cache.lookup(t)
	if ok {
		sig.Params = append([]reflect.Type(nil), sig.Params...)
	}
	return sig, ok
}

// Build returns an instance of t. A bound type is produced by its factory.
// Otherwise a constructor is selected (or taken from cache) and each of its
// parameters is built recursively before it is invoked.
//
// Errors from selection, factories and constructors are returned unchanged,
// however deep in the graph they occur.
func (inj *Injector) Build(t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, fmt.Errorf("%w: nil type", ErrNoSuitableConstructor)
	}
	return inj.build(t, nil)
}

// build does the work of Build. path holds the unbound types whose
// constructors are waiting on t; meeting one of them again is a cycle.
func (inj *Injector) build(t reflect.Type, path []reflect.Type) (reflect.Value, error) {
	if v, ok, err := inj.mappings.fetch(t); ok {
		if err != nil {
			return reflect.Value{}, err
		}
		inj.metrics.observeBuild(SourceBinding)
		return v, nil
	}

	for _, p := range path {
		if p == t {
			inj.log.Debug("dependency cycle", zap.Stringer("type", t))
			return reflect.Value{}, &NoSuitableConstructorError{Type: t}
		}
	}

	sig, err := inj.signature(t)
	if err != nil {
		return reflect.Value{}, err
	}

	path = append(path, t)
	args := make([]reflect.Value, len(sig.Params))
	for i, p := range sig.Params {
		v, err := inj.build(p, path)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}

	v, err := sig.invoke(args)
	if err != nil {
		return reflect.Value{}, err
	}
	inj.metrics.observeBuild(SourceConstructor)
	return v, nil
}

func (inj *Injector) signature(t reflect.Type) (Signature, error) {
	if sig, ok := inj.cache.lookup(t); ok {
		inj.metrics.observeLookup(true)
		return sig, nil
	}
	inj.metrics.observeLookup(false)

	gen := inj.cache.generation()
	// t may have been bound since Build checked; only unmapped types are cached.
	cacheable := !inj.mappings.IsMapped(t)

	sig, consulted, err := inj.selectConstructor(t)
	if err != nil {
		inj.metrics.observeSelectionFailure()
		inj.log.Debug("constructor selection failed", zap.Stringer("type", t))
		return Signature{}, err
	}

	if cacheable && inj.cache.store(t, sig, consulted, gen) {
		inj.log.Debug("constructor selected",
			zap.Stringer("type", t),
			zap.Int("params", len(sig.Params)),
		)
	}
	return sig, nil
}

// ---------------------------------------------------------------------------
// Constructor selection
// ---------------------------------------------------------------------------

// selectConstructor picks the declared constructor of t with the most
// parameters among those whose parameters are all resolvable; ties go to the
// first declared. With no declared constructors the implicit one is used.
func (inj *Injector) selectConstructor(t reflect.Type) (Signature, []reflect.Type, error) {
	ctors := inj.ctors.list(t)
	if len(ctors) == 0 {
		sig, ok := implicitSignature(t)
		if !ok {
			return Signature{}, nil, &NoSuitableConstructorError{Type: t}
		}
		return sig, nil, nil
	}

	s := &selection{
		inj:       inj,
		consulted: make(map[reflect.Type]struct{}),
		visiting:  map[reflect.Type]struct{}{t: {}},
		known:     make(map[reflect.Type]bool),
	}

	best := -1
	for i, c := range ctors {
		// A constructor that cannot beat the current choice need not be checked.
		if best >= 0 && len(c.params) <= len(ctors[best].params) {
			continue
		}
		if s.allResolvable(c.params) {
			best = i
		}
	}

	if best < 0 {
		return Signature{}, nil, &NoSuitableConstructorError{Type: t}
	}
	return ctors[best].signature(), s.consultedTypes(), nil
}

// selection is the state of one structural resolvability check.
type selection struct {
	inj       *Injector
	consulted map[reflect.Type]struct{}

	// visiting holds the types on the current path. Reaching one again means
	// a cycle, which is treated as unresolvable so the check terminates.
	visiting map[reflect.Type]struct{}

	// known caches positive answers only; negative ones depend on the path.
	known map[reflect.Type]bool
}

func (s *selection) allResolvable(params []reflect.Type) bool {
	for _, p := range params {
		if !s.resolvable(p) {
			return false
		}
	}
	return true
}

func (s *selection) resolvable(t reflect.Type) bool {
	s.consulted[t] = struct{}{}

	if s.known[t] {
		return true
	}
	if s.inj.mappings.IsMapped(t) {
		s.known[t] = true
		return true
	}
	if _, ok := s.visiting[t]; ok {
		return false
	}

	ctors := s.inj.ctors.list(t)
	if len(ctors) == 0 {
		ok := implicitlyConstructible(t)
		if ok {
			s.known[t] = true
		}
		return ok
	}

	s.visiting[t] = struct{}{}
	defer delete(s.visiting, t)

	for _, c := range ctors {
		if s.allResolvable(c.params) {
			s.known[t] = true
			return true
		}
	}
	return false
}

func (s *selection) consultedTypes() []reflect.Type {
	out := make([]reflect.Type, 0, len(s.consulted))
	for t := range s.consulted {
		out = append(out, t)
	}
	return out
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Build is a generic helper around [Injector.Build]:
//
//	car, err := acorn.Build[*Car](inj)
func Build[T any](inj *Injector) (T, error) {
	var zero T
	v, err := inj.Build(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return valueAs[T](v), nil
}

// MustBuild is like [Build] but panics on error. Intended for program
// bootstrap and tests.
func MustBuild[T any](inj *Injector) T {
	v, err := Build[T](inj)
	if err != nil {
		panic(err)
	}
	return v
}
