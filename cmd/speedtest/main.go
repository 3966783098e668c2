// Command speedtest times bulk object-graph construction with acorn. Run it
// with:
//
//	go run ./cmd/speedtest
//
// Settings come from the environment or a .env file; see [LoadConfig].
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/ARTM2000/acorn"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

type Entity interface {
	GetAge() int
	GetName() string
}

type Person struct {
	ID   string
	Age  int
	Name string
}

func (p *Person) GetAge() int     { return p.Age }
func (p *Person) GetName() string { return p.Name }

type Car struct {
	Owner   Entity
	Insurer Entity
}

func NewCar(owner *Person, insurer Entity) *Car {
	return &Car{Owner: owner, Insurer: insurer}
}

func newPerson() *Person {
	return &Person{ID: uuid.NewString(), Age: 21, Name: "John"}
}

// ---------------------------------------------------------------------------
// Wiring
// ---------------------------------------------------------------------------

func newLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newInjector(logger *zap.Logger, metrics *acorn.Metrics) (*acorn.Injector, error) {
	inj := acorn.New(acorn.WithLogger(logger), acorn.WithMetrics(metrics))

	acorn.Add(inj.Mappings(), newPerson)
	acorn.Add[Entity](inj.Mappings(), func() Entity { return newPerson() })

	if err := inj.Declare(NewCar); err != nil {
		return nil, fmt.Errorf("declaring constructors: %w", err)
	}
	return inj, nil
}

// runTimed calls build cfg.Iterations times spread over cfg.Workers
// goroutines and returns the elapsed wall time.
func runTimed(cfg *Config, build func() error) (time.Duration, error) {
	per := cfg.Iterations / cfg.Workers
	rem := cfg.Iterations % cfg.Workers

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < cfg.Workers; w++ {
		n := per
		if w < rem {
			n++
		}
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := build(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return time.Since(start), err
}

// metricTotals sums every gathered metric family by name.
func metricTotals(reg prometheus.Gatherer) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			totals[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	return totals, nil
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func run(cfg *Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := acorn.NewMetrics(cfg.MetricsNamespace)
	inj, err := newInjector(logger, metrics)
	if err != nil {
		return err
	}

	fmt.Println("Injector Speed Test")
	fmt.Printf("Building %d cars with 2 injected dependencies each (%d objects) on %d worker(s)\n",
		cfg.Iterations, cfg.Iterations*3, cfg.Workers)

	elapsed, err := runTimed(cfg, func() error {
		_, err := acorn.Build[*Car](inj)
		return err
	})
	if err != nil {
		return fmt.Errorf("building cars: %w", err)
	}
	fmt.Printf("Created %d cars in %dms\n", cfg.Iterations, elapsed.Milliseconds())

	fmt.Println()
	fmt.Println("Building entities straight from their binding, no constructor involved")

	elapsed, err = runTimed(cfg, func() error {
		_, err := acorn.Build[Entity](inj)
		return err
	})
	if err != nil {
		return fmt.Errorf("building entities: %w", err)
	}
	fmt.Printf("Created %d entities in %dms\n", cfg.Iterations, elapsed.Milliseconds())

	if cfg.Dump {
		spew.Fdump(os.Stdout, acorn.MustBuild[*Car](inj))
	}

	totals, err := metricTotals(metrics.Registry())
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]zap.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, zap.Float64(name, totals[name]))
	}
	logger.Info("speed test finished", fields...)
	return nil
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
