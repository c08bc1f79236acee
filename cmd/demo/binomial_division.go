package main

import "github.com/achemlab/sgnssim/internal/config"

// binomialDivisionModel sets up a cell-division scenario entirely through
// init commands, with no reactions at all: a parent starts with a single
// protein pool, a binomial split function partitions it the way an
// independent per-molecule coin flip would between a mother and a
// daughter compartment, and the split-off half is then delivered into the
// newly instantiated daughter via the split buffer.
func binomialDivisionModel() config.ModelConfig {
	return config.ModelConfig{
		Name: "binomial-division",
		Chemicals: []config.ChemicalConfig{
			{Name: "Protein"},
		},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"Protein"},
			},
			{
				Name:      "Daughter",
				Parent:    "env",
				Chemicals: []string{"Protein"},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{
				Kind:         "set_populations",
				Chemical:     "Protein",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 1000},
			},
			{
				Kind:       "split_population",
				Chemical:   "Protein",
				SplitIndex: 0,
				Split:      &config.SplitConfig{Kind: "binomial", P: 0.5},
			},
			{
				Kind:            "instantiate_named_compartment",
				CompartmentType: "Daughter",
				NamedIndex:      0,
			},
			{Kind: "select_compartment", NamedIndex: 0},
			{
				Kind:       "add_population_from_split_buffer",
				Chemical:   "Protein",
				SplitIndex: 0,
			},
		},
	}
}
