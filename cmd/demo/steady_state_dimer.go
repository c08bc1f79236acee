package main

import "github.com/achemlab/sgnssim/internal/config"

// steadyStateDimerModel gates a conversion reaction's propensity by the
// "sshdimer" H-evaluator override instead of an ordinary rate function: B's
// production rate tracks the steady-state heterodimer population of A1/A2
// (dissociation constant k=50) rather than either monomer's count alone, so
// production stays roughly flat once both monomers are abundant relative to
// k and falls off once either one is depleted.
func steadyStateDimerModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "steady-state-dimer",
		Chemicals: []config.ChemicalConfig{
			{Name: "A1"}, {Name: "A2"}, {Name: "B"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"A1", "A2", "B"},
				Reactions: []config.ReactionConfig{
					{
						ID:          "dimer_gated_production",
						C:           0.02,
						HEval:       "sshdimer",
						HEvalParams: []float64{50},
						Reactants: []config.ReactantConfig{
							{Species: "A1", Amount: 0},
							{Species: "A2", Amount: 0},
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
			{Kind: "set_populations", Chemical: "A1", Distribution: &config.DistributionConfig{Kind: "delta", C: 300}},
			{Kind: "set_populations", Chemical: "A2", Distribution: &config.DistributionConfig{Kind: "delta", C: 300}},
		},
	}
}
