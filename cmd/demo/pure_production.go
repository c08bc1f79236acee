package main

import "github.com/achemlab/sgnssim/internal/config"

// pureProductionModel is a single compartment that manufactures A at a
// constant rate from an unconsumed source term. The source reactant has
// zero stoichiometric consumption and a "unit" rate, so its propensity
// never depends on any population: every firing produces exactly one A,
// at a constant average rate of c per unit time.
func pureProductionModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "pure-production",
		Chemicals: []config.ChemicalConfig{
			{Name: "Source"},
			{Name: "A"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Source", "A"},
				Reactions: []config.ReactionConfig{
					{
						ID: "produce_a",
						C:  2.0,
						Reactants: []config.ReactantConfig{
							{Species: "Source", Amount: 0, Rate: &config.RateConfig{Kind: "unit"}},
						},
						Products: []config.ProductConfig{
							{Species: "A", Amount: 1},
						},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
		},
	}
}
