// Package batch runs many independent simulation replicates across a fixed
// worker pool, the same role the original's multithread.h/.cpp platform
// layer served: spawn one worker per available core, have each pull its
// next run index from a shared counter, and give every run its own
// simulation state so replicates never share mutable data.
package batch

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/sgns"
)

// RunFunc executes one replicate against its own freshly seeded Simulation
// and initialized root compartment, typically stepping the simulation to
// completion (RunUntil/RunFor) and recording samples along the way.
type RunFunc func(run int, sim *sgns.Simulation, env *sgns.HierCompartment) error

// Result is one replicate's outcome. ID is a fresh UUID minted per
// replicate, not derived from Seed, so external systems (logs, a status
// API) have a stable handle to a specific run even across batches that
// reuse the same base seed.
type Result struct {
	ID    string
	Run   int
	Seed  int64
	Steps int64
	Took  time.Duration
	Err   error
}

// Runner drives a batch of independent replicates of a single Model.
type Runner struct {
	Model   *config.Model
	EnvType string

	// Workers is the size of the goroutine pool. Zero or negative means
	// runtime.GOMAXPROCS(0), mirroring mt::coreCount's role of sizing the
	// pool to the machine it runs on.
	Workers int

	// BaseSeed seeds replicate i with BaseSeed+i, so a batch is fully
	// reproducible given the same base seed and replicate count.
	BaseSeed int64

	Run RunFunc
}

// NewRunner creates a Runner with Workers left at zero, so RunAll sizes the
// pool to the machine by default.
func NewRunner(model *config.Model, envType string, baseSeed int64, run RunFunc) *Runner {
	return &Runner{Model: model, EnvType: envType, BaseSeed: baseSeed, Run: run}
}

// RunAll executes n replicates across the worker pool and returns one
// Result per replicate, ordered by replicate index regardless of which
// worker actually ran it or the order in which workers finished.
func (r *Runner) RunAll(n int) ([]Result, error) {
	if r.Run == nil {
		return nil, fmt.Errorf("batch: Runner.Run is nil")
	}
	if n <= 0 {
		return nil, nil
	}
	envType, ok := r.Model.CompartmentTypes[r.EnvType]
	if !ok {
		return nil, fmt.Errorf("batch: unknown root compartment type %q", r.EnvType)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	results := make([]Result, n)
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				results[i] = r.runOne(i, envType)
			}
		}()
	}
	wg.Wait()
	return results, nil
}

func (r *Runner) runOne(i int, envType *sgns.CompartmentType) Result {
	seed := r.BaseSeed + int64(i)
	sim := sgns.NewSimulation(seed)
	ctx := sgns.NewContext(sim, envType)
	r.Model.Init.Run(ctx)

	start := time.Now()
	err := r.Run(i, sim, ctx.Env())
	return Result{
		ID: uuid.NewString(), Run: i, Seed: seed,
		Steps: sim.StepCount(), Took: time.Since(start), Err: err,
	}
}
