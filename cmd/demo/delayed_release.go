package main

import "github.com/achemlab/sgnssim/internal/config"

// delayedReleaseModel consumes a Precursor instantly but releases its
// Product only after a delay drawn fresh per firing from an exponential
// distribution, exercising the wait-list release path a zero/Delta(0) tau
// would otherwise skip entirely.
func delayedReleaseModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "delayed-release",
		Chemicals: []config.ChemicalConfig{
			{Name: "Precursor"},
			{Name: "Product"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Precursor", "Product"},
				Reactions: []config.ReactionConfig{
					{
						ID: "release",
						C:  0.5,
						Reactants: []config.ReactantConfig{
							{Species: "Precursor", Amount: 1},
						},
						Products: []config.ProductConfig{
							{
								Species: "Product",
								Amount:  1,
								Tau:     &config.DistributionConfig{Kind: "exponential", Lambda: 0.5},
							},
						},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{
				Kind:         "set_populations",
				Chemical:     "Precursor",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 50},
			},
		},
	}
}
