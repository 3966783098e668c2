package acorn

import (
	"errors"
	"sync/atomic"
)

// Shared test types and constructors used across test files.

type entity interface {
	GetName() string
}

type person struct {
	Age  int
	Name string
}

func (p *person) GetName() string { return p.Name }

type car struct {
	Owner   entity
	Insurer entity
}

func newCar(owner *person, insurer entity) *car {
	return &car{Owner: owner, Insurer: insurer}
}

func newJohn() *person { return &person{Age: 21, Name: "John"} }

// johnEntity is a factory returning a fresh *person on every call.
func johnEntity() entity { return newJohn() }

// ---------------------------------------------------------------------------
// Selection fixtures
// ---------------------------------------------------------------------------

type engine interface{ Power() int }

type v8 struct{}

func (v8) Power() int { return 8 }

type wheel struct{ Size int }

// gadget records which constructor built it.
type gadget struct {
	Used   int
	Engine engine
	Wheel  *wheel
}

func newGadget() *gadget {
	return &gadget{Used: 0}
}

func newGadgetWithWheel(w *wheel) *gadget {
	return &gadget{Used: 1, Wheel: w}
}

func newGadgetWithBoth(w *wheel, e engine) *gadget {
	return &gadget{Used: 2, Wheel: w, Engine: e}
}

// tuned has a single constructor whose only parameter is an interface.
type tuned struct{ Engine engine }

func newTuned(e engine) *tuned { return &tuned{Engine: e} }

// garage can only use its richer constructor once engine resolves, which
// it learns through tuned.
type garage struct {
	Used  int
	Tuned *tuned
}

func newGarage() *garage {
	return &garage{Used: 0}
}

func newGarageWithTuned(tu *tuned) *garage {
	return &garage{Used: 1, Tuned: tu}
}

type cycA struct{ B *cycB }
type cycB struct{ A *cycA }

func newCycA(b *cycB) *cycA { return &cycA{B: b} }
func newCycB(a *cycA) *cycB { return &cycB{A: a} }

// loopA and loopB depend on each other but also have zero-argument
// constructors, so selection accepts the longer ones.
type loopA struct{ B *loopB }
type loopB struct{ A *loopA }

func newLoopA() *loopA            { return &loopA{} }
func newLoopAFrom(b *loopB) *loopA { return &loopA{B: b} }
func newLoopB() *loopB            { return &loopB{} }
func newLoopBFrom(a *loopA) *loopB { return &loopB{A: a} }

// structErr implements error with a non-nillable value receiver.
type structErr struct{}

func (structErr) Error() string { return "struct error" }

type plain struct {
	N    int
	Tags []string
}

var errBoom = errors.New("boom")

type failing struct{}

func newFailing() (*failing, error) { return nil, errBoom }

type dependsOnFailing struct{ F *failing }

func newDependsOnFailing(f *failing) *dependsOnFailing { return &dependsOnFailing{F: f} }

// counted counts constructor invocations.
type counted struct{ Seq int64 }

func countingConstructor(n *atomic.Int64) func() *counted {
	return func() *counted { return &counted{Seq: n.Add(1)} }
}
