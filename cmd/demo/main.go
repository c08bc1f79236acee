// Command demo runs a handful of small, worked models end to end and
// prints their final population snapshot, the way cmd/achemdb's demo
// reactions once exercised a handful of PoC molecule conversions.
package main

import (
	"fmt"
	"os"

	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/sample"
	"github.com/achemlab/sgnssim/internal/sgns"
)

type example struct {
	name   string
	build  func() config.ModelConfig
	stopAt float64
}

var examples = []example{
	{"pure production", pureProductionModel, 20},
	{"dimer decay", dimerDecayModel, 20},
	{"delayed release", delayedReleaseModel, 20},
	{"binomial division", binomialDivisionModel, 5},
	{"umbrella rescaling", umbrellaRescalingModel, 20},
	{"steady-state dimer", steadyStateDimerModel, 20},
}

func main() {
	for _, ex := range examples {
		if err := runExample(ex); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ex.name, err)
			os.Exit(1)
		}
	}
}

func runExample(ex example) error {
	fmt.Printf("=== %s ===\n", ex.name)

	cfg := ex.build()
	model, err := config.BuildModelFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("building model: %w", err)
	}

	rootType, err := rootTypeName(cfg)
	if err != nil {
		return err
	}

	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, model.CompartmentTypes[rootType])
	model.Init.Run(ctx)

	sampler := sample.NewSampler(sample.NewStdoutTarget())
	sim.RunUntil(ex.stopAt)
	if err := sampler.SampleState(sim.Time(), ctx.Env()); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}

	fmt.Println()
	return nil
}

func rootTypeName(cfg config.ModelConfig) (string, error) {
	for _, ct := range cfg.CompartmentTypes {
		if ct.Parent == "" {
			return ct.Name, nil
		}
	}
	return "", fmt.Errorf("model %q declares no root compartment type", cfg.Name)
}
