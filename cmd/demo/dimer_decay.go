package main

import "github.com/achemlab/sgnssim/internal/config"

// dimerDecayModel decays A two molecules at a time: 2A -> nothing. The
// reactant's GilH(2) rate gives the combinatorial number of unordered
// pairs available (x choose 2), the propensity a second-order reaction
// actually fires at, rather than the linear x a first-order decay would
// use.
func dimerDecayModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "dimer-decay",
		Chemicals: []config.ChemicalConfig{
			{Name: "A"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"A"},
				Reactions: []config.ReactionConfig{
					{
						ID: "dimer_decay",
						C:  0.05,
						Reactants: []config.ReactantConfig{
							{Species: "A", Amount: 2, Rate: &config.RateConfig{Kind: "gilh", N: 2}},
						},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{
				Kind:         "set_populations",
				Chemical:     "A",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 200},
			},
		},
	}
}
