package acorn_test

import (
	"errors"
	"fmt"

	"github.com/ARTM2000/acorn"
)

// Types used in examples only.
type Entity interface {
	GetName() string
}

type Person struct {
	Age  int
	Name string
}

func (p *Person) GetName() string { return p.Name }

type Car struct {
	Owner   Entity
	Insurer Entity
}

func NewCar(owner *Person, insurer Entity) *Car {
	return &Car{Owner: owner, Insurer: insurer}
}

type Logger struct{ Prefix string }

type Service struct{ Logger *Logger }

func NewService(l *Logger) *Service { return &Service{Logger: l} }

func ExampleNew() {
	inj := acorn.New()
	acorn.Add[Entity](inj.Mappings(), func() Entity {
		return &Person{Age: 21, Name: "John"}
	})

	e, _ := acorn.Build[Entity](inj)
	fmt.Println(e.GetName())
	// Output: John
}

func ExampleBuild() {
	inj := acorn.New()
	acorn.Add(inj.Mappings(), func() *Person { return &Person{Age: 21, Name: "John"} })
	acorn.Add[Entity](inj.Mappings(), func() Entity { return &Person{Age: 40, Name: "Ann"} })
	_ = inj.Declare(NewCar)

	car, err := acorn.Build[*Car](inj)
	if err != nil {
		panic(err)
	}
	fmt.Println(car.Owner.GetName())
	fmt.Println(car.Insurer.GetName())
	// Output:
	// John
	// Ann
}

func ExampleAdd_singleton() {
	inj := acorn.New()
	shared := &Logger{Prefix: "app"}
	acorn.Add(inj.Mappings(), func() *Logger { return shared })
	_ = inj.Declare(NewService)

	s1 := acorn.MustBuild[*Service](inj)
	s2 := acorn.MustBuild[*Service](inj)
	fmt.Println(s1 == s2)
	fmt.Println(s1.Logger == s2.Logger)
	// Output:
	// false
	// true
}

func ExampleInjector_Declare() {
	inj := acorn.New()
	_ = inj.Declare(
		func() *Logger { return &Logger{Prefix: "default"} },
		func(e Entity) *Logger { return &Logger{Prefix: e.GetName()} },
	)

	// Entity is unbound, so only the zero-argument constructor qualifies.
	fmt.Println(acorn.MustBuild[*Logger](inj).Prefix)

	acorn.Add[Entity](inj.Mappings(), func() Entity { return &Person{Name: "audit"} })
	fmt.Println(acorn.MustBuild[*Logger](inj).Prefix)
	// Output:
	// default
	// audit
}

func ExampleNoSuitableConstructorError() {
	inj := acorn.New()

	_, err := acorn.Build[Entity](inj)
	var nsc *acorn.NoSuitableConstructorError
	fmt.Println(errors.As(err, &nsc), nsc.Type)
	// Output: true acorn_test.Entity
}
