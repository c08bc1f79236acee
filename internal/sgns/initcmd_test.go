package sgns_test

import (
	"testing"

	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/sgns"
)

func TestDelayedReleaseDoesNotAppearBeforeItsDelay(t *testing.T) {
	cfg := config.ModelConfig{
		Name:      "delayed",
		Chemicals: []config.ChemicalConfig{{Name: "Precursor"}, {Name: "Product"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Precursor", "Product"},
				Reactions: []config.ReactionConfig{
					{
						ID:        "release",
						C:         0.5,
						Reactants: []config.ReactantConfig{{Species: "Precursor", Amount: 1}},
						Products: []config.ProductConfig{
							{Species: "Product", Amount: 1, Tau: &config.DistributionConfig{Kind: "delta", C: 1000}},
						},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{Kind: "set_populations", Chemical: "Precursor", Distribution: &config.DistributionConfig{Kind: "delta", C: 5}},
		},
	}
	m := buildModel(t, cfg)
	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, m.CompartmentTypes["env"])
	m.Init.Run(ctx)

	productIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["Product"])

	sim.RunUntil(50)
	if got := ctx.Env().GetPopulation(productIdx); got != 0 {
		t.Fatalf("expected Product to still be 0 well before its 1000-unit delay elapses, got %d", got)
	}

	sim.RunUntil(2000)
	if got := ctx.Env().GetPopulation(productIdx); got == 0 {
		t.Fatal("expected at least one delayed Product release to have landed by t=2000")
	}
}

func TestSplitPopulationPartitionsWithoutAnyReaction(t *testing.T) {
	cfg := config.ModelConfig{
		Name:      "division",
		Chemicals: []config.ChemicalConfig{{Name: "Protein"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{Name: "env", Chemicals: []string{"Protein"}},
			{Name: "Daughter", Parent: "env", Chemicals: []string{"Protein"}},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{Kind: "set_populations", Chemical: "Protein", Distribution: &config.DistributionConfig{Kind: "delta", C: 1000}},
			{Kind: "split_population", Chemical: "Protein", SplitIndex: 0, Split: &config.SplitConfig{Kind: "binomial", P: 0.5}},
			{Kind: "instantiate_named_compartment", CompartmentType: "Daughter", NamedIndex: 0},
			{Kind: "select_compartment", NamedIndex: 0},
			{Kind: "add_population_from_split_buffer", Chemical: "Protein", SplitIndex: 0},
		},
	}
	m := buildModel(t, cfg)
	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, m.CompartmentTypes["env"])
	m.Init.Run(ctx)

	envIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["Protein"])
	envPop := ctx.Env().GetPopulation(envIdx)

	daughter := ctx.Env().FirstSubCompartment()
	if daughter == nil {
		t.Fatal("expected a Daughter compartment to have been instantiated")
	}
	daughterIdx := m.CompartmentTypes["Daughter"].GetChemicalIndex(m.Chemicals["Protein"])
	daughterPop := daughter.GetPopulation(daughterIdx)

	if envPop+daughterPop != 1000 {
		t.Fatalf("expected the split to conserve the total population, got env=%d daughter=%d (sum=%d)", envPop, daughterPop, envPop+daughterPop)
	}
}

func TestUmbrellaNestedReactionFiresOnlyWhenGateIsOpen(t *testing.T) {
	cfg := config.ModelConfig{
		Name:      "umbrella",
		Chemicals: []config.ChemicalConfig{{Name: "Catalyst"}, {Name: "A"}, {Name: "B"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Catalyst", "A", "B"},
				Reactions: []config.ReactionConfig{
					{
						ID:       "gate",
						Umbrella: true,
						C:        1.0,
						Reactants: []config.ReactantConfig{
							{Species: "Catalyst", Amount: 0, Rate: &config.RateConfig{Kind: "hill", An: 20, N: 2}},
						},
					},
					{
						ID:             "convert",
						ParentReaction: "gate",
						ParentDepth:    0,
						C:              1.0,
						Reactants:      []config.ReactantConfig{{Species: "A", Amount: 1}},
						Products:       []config.ProductConfig{{Species: "B", Amount: 1}},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{Kind: "set_populations", Chemical: "Catalyst", Distribution: &config.DistributionConfig{Kind: "delta", C: 40}},
			{Kind: "set_populations", Chemical: "A", Distribution: &config.DistributionConfig{Kind: "delta", C: 100}},
		},
	}
	m := buildModel(t, cfg)
	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, m.CompartmentTypes["env"])
	m.Init.Run(ctx)

	aIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["A"])
	bIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["B"])

	sim.RunUntil(200)
	totalAB := ctx.Env().GetPopulation(aIdx) + ctx.Env().GetPopulation(bIdx)
	if totalAB != 100 {
		t.Fatalf("expected A+B to conserve at 100, got %d", totalAB)
	}
	if ctx.Env().GetPopulation(bIdx) == 0 {
		t.Fatal("expected the umbrella-gated conversion to have fired at least once by t=200 with a nonzero Catalyst population")
	}
}

func TestSshdimerHEvalGatesProductionThroughTheConfigLayer(t *testing.T) {
	cfg := config.ModelConfig{
		Name:      "dimer-gated",
		Chemicals: []config.ChemicalConfig{{Name: "A1"}, {Name: "A2"}, {Name: "B"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"A1", "A2", "B"},
				Reactions: []config.ReactionConfig{
					{
						ID:          "dimer_gated_production",
						C:           0.05,
						HEval:       "sshdimer",
						HEvalParams: []float64{50},
						Reactants: []config.ReactantConfig{
							{Species: "A1", Amount: 0},
							{Species: "A2", Amount: 0},
						},
						Products: []config.ProductConfig{{Species: "B", Amount: 1}},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{Kind: "set_populations", Chemical: "A1", Distribution: &config.DistributionConfig{Kind: "delta", C: 300}},
			{Kind: "set_populations", Chemical: "A2", Distribution: &config.DistributionConfig{Kind: "delta", C: 300}},
		},
	}
	m := buildModel(t, cfg)
	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, m.CompartmentTypes["env"])
	m.Init.Run(ctx)

	a1Idx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["A1"])
	bIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["B"])

	before := ctx.Env().GetPopulation(a1Idx)
	sim.RunUntil(50)
	after := ctx.Env().GetPopulation(a1Idx)

	if ctx.Env().GetPopulation(bIdx) == 0 {
		t.Fatal("expected the sshdimer-gated reaction to have fired at least once by t=50")
	}
	if after != before {
		t.Errorf("A1 has zero consumption in this reaction's config, so its population should be untouched: before=%d after=%d", before, after)
	}
}

func TestUmbrellaNestedReactionNeverFiresWithoutTheCatalyst(t *testing.T) {
	cfg := config.ModelConfig{
		Name:      "umbrella-closed",
		Chemicals: []config.ChemicalConfig{{Name: "Catalyst"}, {Name: "A"}, {Name: "B"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Catalyst", "A", "B"},
				Reactions: []config.ReactionConfig{
					{
						ID:       "gate",
						Umbrella: true,
						C:        1.0,
						Reactants: []config.ReactantConfig{
							{Species: "Catalyst", Amount: 0, Rate: &config.RateConfig{Kind: "hill", An: 20, N: 2}},
						},
					},
					{
						ID:             "convert",
						ParentReaction: "gate",
						ParentDepth:    0,
						C:              1.0,
						Reactants:      []config.ReactantConfig{{Species: "A", Amount: 1}},
						Products:       []config.ProductConfig{{Species: "B", Amount: 1}},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{Kind: "set_populations", Chemical: "A", Distribution: &config.DistributionConfig{Kind: "delta", C: 100}},
		},
	}
	m := buildModel(t, cfg)
	sim := sgns.NewSimulation(1)
	ctx := sgns.NewContext(sim, m.CompartmentTypes["env"])
	m.Init.Run(ctx)

	bIdx := m.CompartmentTypes["env"].GetChemicalIndex(m.Chemicals["B"])

	sim.RunUntil(200)
	if got := ctx.Env().GetPopulation(bIdx); got != 0 {
		t.Fatalf("expected B to stay at 0 with Catalyst absent (hill rate at x=0 is 0), got %d", got)
	}
}
