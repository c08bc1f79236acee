package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every issue found rather than stopping at the
// first, the way the teacher's schema validation does.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "invalid model config: unknown validation error"
	case 1:
		return e.Issues[0]
	default:
		return "model config validation errors: " + strings.Join(e.Issues, "; ")
	}
}

func (e *ValidationError) Add(issue string) { e.Issues = append(e.Issues, issue) }

func (e *ValidationError) HasIssues() bool { return len(e.Issues) > 0 }

var validRateKinds = map[string]bool{
	"unit": true, "linear": true, "gilh": true, "pow": true,
	"hill": true, "invhill": true, "min": true, "max": true,
	"step": true, "step2": true,
}

var validSplitKinds = map[string]bool{
	"all_or_nothing": true, "beta_binomial": true, "binomial": true,
	"binomial_p": true, "pair": true, "take": true, "take_round": true,
	"range": true,
}

var validDistributionKinds = map[string]bool{
	"delta": true, "uniform": true, "gaussian": true, "trunc_gaussian": true,
	"non_negative_gaussian": true, "exponential": true, "gamma": true, "beta": true,
}

var validHEvalKinds = map[string]bool{
	"": true, "default": true, "fa2a1r": true, "sshdimer": true, "script": true,
}

// ValidateModelConfig performs comprehensive validation of a ModelConfig:
// unique names, resolvable parent/chemical/reaction references, and
// well-formed rate/split/distribution oneofs.
func ValidateModelConfig(cfg ModelConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("model name is required")
	}

	chemicalNames := make(map[string]bool)
	for _, c := range cfg.Chemicals {
		if c.Name == "" {
			err.Add("chemical name is required")
			continue
		}
		if chemicalNames[c.Name] {
			err.Add("duplicate chemical name: " + c.Name)
		}
		chemicalNames[c.Name] = true
	}

	typesByName := make(map[string]CompartmentTypeConfig)
	for _, ct := range cfg.CompartmentTypes {
		if ct.Name == "" {
			err.Add("compartment type name is required")
			continue
		}
		if _, exists := typesByName[ct.Name]; exists {
			err.Add("duplicate compartment type name: " + ct.Name)
			continue
		}
		typesByName[ct.Name] = ct
	}

	for _, ct := range cfg.CompartmentTypes {
		prefix := "compartment type '" + ct.Name + "'"

		if ct.Parent != "" {
			if _, ok := typesByName[ct.Parent]; !ok {
				err.Add(prefix + ": parent type '" + ct.Parent + "' does not exist")
			} else if isAncestorCycle(ct.Name, ct.Parent, typesByName) {
				err.Add(prefix + ": parent chain forms a cycle")
			}
		}

		localChemicals := make(map[string]bool)
		for _, chemName := range ct.Chemicals {
			if !chemicalNames[chemName] {
				err.Add(prefix + ": chemical '" + chemName + "' is not declared in the model")
			}
			localChemicals[chemName] = true
		}

		reactionIDs := make(map[string]bool)
		for i, rc := range ct.Reactions {
			rPrefix := prefix + " reaction"
			if rc.ID != "" {
				rPrefix += " '" + rc.ID + "'"
			} else {
				rPrefix += fmt.Sprintf(" at index %d", i)
			}

			if rc.ID == "" {
				err.Add(rPrefix + ": reaction ID is required")
			} else if reactionIDs[rc.ID] {
				err.Add("duplicate reaction ID: " + rc.ID)
			} else {
				reactionIDs[rc.ID] = true
			}

			if len(rc.Reactants) == 0 {
				err.Add(rPrefix + ": at least one reactant is required")
			}
			for j, reactant := range rc.Reactants {
				if reactant.Species == "" {
					err.Add(rPrefix + fmt.Sprintf(" reactant %d: species is required", j))
				} else if !localChemicals[reactant.Species] {
					err.Add(rPrefix + fmt.Sprintf(" reactant %d: species '%s' is not declared on this compartment type", j, reactant.Species))
				}
				validateRateConfig(reactant.Rate, rPrefix, err)
			}
			for j, product := range rc.Products {
				if product.Species == "" {
					err.Add(rPrefix + fmt.Sprintf(" product %d: species is required", j))
				} else if !localChemicals[product.Species] {
					err.Add(rPrefix + fmt.Sprintf(" product %d: species '%s' is not declared on this compartment type", j, product.Species))
				}
				validateDistributionConfig(product.Tau, rPrefix, err)
			}

			if !validHEvalKinds[rc.HEval] {
				err.Add(rPrefix + ": unknown h_eval kind '" + rc.HEval + "'")
			} else {
				switch rc.HEval {
				case "fa2a1r":
					if len(rc.Reactants) < 3 {
						err.Add(rPrefix + ": h_eval 'fa2a1r' requires at least 3 reactants")
					}
					if len(rc.HEvalParams) != 8 {
						err.Add(rPrefix + fmt.Sprintf(": h_eval 'fa2a1r' requires 8 h_eval_params, got %d", len(rc.HEvalParams)))
					}
				case "sshdimer":
					if len(rc.Reactants) < 2 {
						err.Add(rPrefix + ": h_eval 'sshdimer' requires at least 2 reactants")
					}
					if len(rc.HEvalParams) != 1 {
						err.Add(rPrefix + fmt.Sprintf(": h_eval 'sshdimer' requires 1 h_eval_param, got %d", len(rc.HEvalParams)))
					}
				case "script":
					if rc.Script == "" {
						err.Add(rPrefix + ": h_eval 'script' requires a script name")
					}
				}
			}
		}
	}

	knownCommandKinds := map[string]bool{
		"select_env": true, "select_compartment_type": true, "select_compartment": true,
		"instantiate_named_compartment": true, "instantiate_compartments": true,
		"set_populations": true, "add_to_wait_list": true, "split_population": true,
		"add_population_from_split_buffer": true, "add_to_wait_list_from_split_buffer": true,
		"split_compartments": true, "insert_split_compartments": true,
		"delete_compartments": true, "update_simulation": true,
	}
	for i, cmd := range cfg.Init {
		cPrefix := fmt.Sprintf("init command at index %d", i)
		if !knownCommandKinds[cmd.Kind] {
			err.Add(cPrefix + ": unknown command kind '" + cmd.Kind + "'")
			continue
		}
		if cmd.CompartmentType != "" {
			if _, ok := typesByName[cmd.CompartmentType]; !ok {
				err.Add(cPrefix + ": compartment type '" + cmd.CompartmentType + "' does not exist")
			}
		}
		validateDistributionConfig(cmd.Distribution, cPrefix, err)
		validateDistributionConfig(cmd.When, cPrefix, err)
		validateSplitConfig(cmd.Split, cPrefix, err)
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func isAncestorCycle(origin, parent string, typesByName map[string]CompartmentTypeConfig) bool {
	seen := map[string]bool{origin: true}
	for parent != "" {
		if seen[parent] {
			return true
		}
		seen[parent] = true
		ct, ok := typesByName[parent]
		if !ok {
			return false
		}
		parent = ct.Parent
	}
	return false
}

func validateRateConfig(rc *RateConfig, prefix string, err *ValidationError) {
	if rc == nil {
		return
	}
	if !validRateKinds[rc.Kind] {
		err.Add(prefix + ": unknown rate kind '" + rc.Kind + "'")
	}
}

func validateDistributionConfig(dc *DistributionConfig, prefix string, err *ValidationError) {
	if dc == nil {
		return
	}
	if !validDistributionKinds[dc.Kind] {
		err.Add(prefix + ": unknown distribution kind '" + dc.Kind + "'")
	}
}

func validateSplitConfig(sc *SplitConfig, prefix string, err *ValidationError) {
	if sc == nil {
		return
	}
	if !validSplitKinds[sc.Kind] {
		err.Add(prefix + ": unknown split kind '" + sc.Kind + "'")
	}
}
