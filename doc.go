// Package acorn builds object graphs by reflection.
//
// Bind a type to a zero-argument factory, declare constructor functions for
// the types you want assembled, and ask the [Injector] for any type. Bound
// types come straight from their factory; every other type is built by
// selecting one of its constructors and recursively building the
// constructor's parameters.
//
// # Quick Start
//
//	inj := acorn.New()
//	acorn.Add[Entity](inj.Mappings(), func() Entity {
//		return &Person{Age: 21, Name: "John"}
//	})
//	inj.Declare(NewCar)
//
//	car, err := acorn.Build[*Car](inj)
//
// # Constructor Selection
//
// Go has no language constructors, so a type's constructors are the
// functions declared for it with [Injector.Declare], in declaration order.
// Among the constructors whose parameters are all resolvable, the one with
// the most parameters wins; ties go to the first declared. A parameter type
// is resolvable if it is bound, if it has a resolvable constructor, or if it
// has no declared constructors and Go can zero-construct it (pointers, maps,
// structs and other value types, but not interfaces). If nothing qualifies,
// Build fails with [NoSuitableConstructorError].
//
// The chosen constructor is cached per type. Changing a binding or declaring
// a constructor drops every cached choice that examined the affected type.
//
// # Lifetimes
//
// There is one: the factory runs on every Build. For a singleton, bind a
// factory that returns a captured value:
//
//	cfg := &Config{}
//	acorn.Add[*Config](inj.Mappings(), func() *Config { return cfg })
//
// A dependency cycle between unbound types is reported as
// [NoSuitableConstructorError], whether selection rejects it or a build
// reaches a type that is already being constructed.
package acorn
