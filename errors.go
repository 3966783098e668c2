package acorn

import (
	"errors"
	"reflect"
)

var (
	// ErrUnmappedType is returned when a binding is requested for a type that
	// has no registered factory.
	ErrUnmappedType = errors.New("unmapped type")

	// ErrNoSuitableConstructor is returned when constructor selection finds no
	// constructor whose parameters can all be resolved.
	ErrNoSuitableConstructor = errors.New("no suitable constructor")

	// ErrInvalidFactory is returned when a factory is not a zero-argument
	// function producing a value assignable to the bound type.
	ErrInvalidFactory = errors.New("invalid factory")

	// ErrInvalidConstructor is returned when a declared constructor does not
	// have the shape func(deps...) T or func(deps...) (T, error).
	ErrInvalidConstructor = errors.New("invalid constructor")
)

// UnmappedTypeError reports a direct binding lookup for a type with no
// registered factory. It matches [ErrUnmappedType] with errors.Is.
type UnmappedTypeError struct {
	Type reflect.Type
}

func (e *UnmappedTypeError) Error() string {
	return "mappings do not contain a factory for type " + typeName(e.Type)
}

func (e *UnmappedTypeError) Unwrap() error { return ErrUnmappedType }

// NoSuitableConstructorError reports that no declared or implicit constructor
// of Type could be fully resolved. It matches [ErrNoSuitableConstructor] with
// errors.Is.
type NoSuitableConstructorError struct {
	Type reflect.Type
}

func (e *NoSuitableConstructorError) Error() string {
	return "failed to find a suitable constructor for type " + typeName(e.Type) +
		"; check that its parameters are mapped"
}

func (e *NoSuitableConstructorError) Unwrap() error { return ErrNoSuitableConstructor }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
