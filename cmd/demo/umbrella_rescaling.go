package main

import "github.com/achemlab/sgnssim/internal/config"

// umbrellaRescalingModel nests a plain conversion reaction inside an
// umbrella reaction gated on a Catalyst population. The umbrella's own
// propensity rescales how fast simulated time passes for everything
// nested inside it: as Catalyst accumulates, the nested A->B conversion
// fires increasingly often per unit of wall-clock simulated time, without
// either reaction's own rate constant changing.
func umbrellaRescalingModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "umbrella-rescaling",
		Chemicals: []config.ChemicalConfig{
			{Name: "Catalyst"},
			{Name: "A"},
			{Name: "B"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Catalyst", "A", "B"},
				Reactions: []config.ReactionConfig{
					{
						ID:       "catalysis_gate",
						Umbrella: true,
						C:        1.0,
						Reactants: []config.ReactantConfig{
							{Species: "Catalyst", Amount: 0, Rate: &config.RateConfig{Kind: "hill", An: 20, N: 2}},
						},
					},
					{
						ID:             "convert",
						ParentReaction: "catalysis_gate",
						ParentDepth:    0,
						C:              1.0,
						Reactants: []config.ReactantConfig{
							{Species: "A", Amount: 1},
						},
						Products: []config.ProductConfig{
							{Species: "B", Amount: 1},
						},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{
				Kind:         "set_populations",
				Chemical:     "Catalyst",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 40},
			},
			{
				Kind:         "set_populations",
				Chemical:     "A",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 100},
			},
		},
	}
}
