package config

import (
	"fmt"

	"github.com/achemlab/sgnssim/internal/sgns"
)

// Model is a built sgns model: every chemical and compartment type named
// in a ModelConfig, resolved to live objects, plus the initialization
// program (if any) that seeds a Simulation.
type Model struct {
	Chemicals        map[string]*sgns.Chemical
	CompartmentTypes map[string]*sgns.CompartmentType
	Init             sgns.Program
}

// BuildModelFromConfig validates cfg and constructs the sgns objects it
// describes: every Chemical, every CompartmentType (with its reaction
// bank sealed), and the init Program.
func BuildModelFromConfig(cfg ModelConfig) (*Model, error) {
	if err := ValidateModelConfig(cfg); err != nil {
		return nil, err
	}

	m := &Model{
		Chemicals:        make(map[string]*sgns.Chemical),
		CompartmentTypes: make(map[string]*sgns.CompartmentType),
	}

	for _, cc := range cfg.Chemicals {
		chem := sgns.NewChemical(cc.Name)
		chem.SetOutput(cc.ShouldOutput())
		m.Chemicals[cc.Name] = chem
	}

	ctConfigs := make(map[string]CompartmentTypeConfig, len(cfg.CompartmentTypes))
	for _, ct := range cfg.CompartmentTypes {
		ctConfigs[ct.Name] = ct
	}

	building := make(map[string]bool)
	for _, ct := range cfg.CompartmentTypes {
		if _, err := m.buildCompartmentType(ct.Name, ctConfigs, building); err != nil {
			return nil, err
		}
	}

	for _, ct := range cfg.CompartmentTypes {
		if err := m.wireReactions(ctConfigs[ct.Name], cfg.ScriptEvaluators); err != nil {
			return nil, err
		}
	}
	for _, ctc := range ctConfigs {
		m.CompartmentTypes[ctc.Name].Bank().Seal()
	}

	program, err := BuildProgramFromConfig(cfg.Init, m)
	if err != nil {
		return nil, err
	}
	m.Init = program

	return m, nil
}

func (m *Model) buildCompartmentType(name string, ctConfigs map[string]CompartmentTypeConfig, building map[string]bool) (*sgns.CompartmentType, error) {
	if ct, ok := m.CompartmentTypes[name]; ok {
		return ct, nil
	}
	if building[name] {
		return nil, fmt.Errorf("config: cycle building compartment type %q", name)
	}
	cfg, ok := ctConfigs[name]
	if !ok {
		return nil, fmt.Errorf("config: compartment type %q not declared", name)
	}
	building[name] = true

	var parent *sgns.CompartmentType
	if cfg.Parent != "" {
		var err error
		parent, err = m.buildCompartmentType(cfg.Parent, ctConfigs, building)
		if err != nil {
			return nil, err
		}
	}

	ct := sgns.NewCompartmentType(cfg.Name, parent)
	ct.SetOutput(cfg.ShouldOutput())
	for _, chemName := range cfg.Chemicals {
		chem, ok := m.Chemicals[chemName]
		if !ok {
			return nil, fmt.Errorf("config: compartment type %q references unknown chemical %q", cfg.Name, chemName)
		}
		ct.GetOrAddChemicalIndex(chem)
	}

	m.CompartmentTypes[name] = ct
	return ct, nil
}

// wireReactions registers every reaction in ctc into its compartment
// type's bank, resolving reactant/product species to local chemical
// indices and umbrella parents to previously-registered reaction IDs.
func (m *Model) wireReactions(ctc CompartmentTypeConfig, scripts map[string]sgns.ScriptEvaluator) error {
	ct := m.CompartmentTypes[ctc.Name]
	bank := ct.Bank()

	reactionIDs := make(map[string]int)
	for _, rc := range ctc.Reactions {
		var id int
		if rc.ParentReaction == "" {
			id = bank.CreateFreeReaction(rc.Umbrella, rc.FireOnce)
		} else {
			parentID, ok := reactionIDs[rc.ParentReaction]
			if !ok {
				return fmt.Errorf("config: reaction %q references unknown parent reaction %q", rc.ID, rc.ParentReaction)
			}
			id = bank.CreateReaction(rc.ParentDepth, parentID, rc.Umbrella, rc.FireOnce)
		}
		reactionIDs[rc.ID] = id

		tmpl := bank.ReactionTemplate(id)
		tmpl.SetC(rc.C)

		for _, rcfg := range rc.Reactants {
			chem, ok := m.Chemicals[rcfg.Species]
			if !ok {
				return fmt.Errorf("config: reaction %q: unknown reactant species %q", rc.ID, rcfg.Species)
			}
			idx := ct.GetOrAddChemicalIndex(chem)
			reactant := tmpl.NewReactant(idx, rcfg.Amount, rcfg.Compartment)
			if rcfg.Rate != nil {
				rate, err := BuildRateFromConfig(*rcfg.Rate)
				if err != nil {
					return fmt.Errorf("config: reaction %q: %w", rc.ID, err)
				}
				*reactant.RateFunc() = rate
			}
		}

		for _, pcfg := range rc.Products {
			chem, ok := m.Chemicals[pcfg.Species]
			if !ok {
				return fmt.Errorf("config: reaction %q: unknown product species %q", rc.ID, pcfg.Species)
			}
			idx := ct.GetOrAddChemicalIndex(chem)
			product := tmpl.NewProduct(idx, pcfg.Amount, pcfg.Compartment)
			if pcfg.Tau != nil {
				tau, err := BuildDistributionFromConfig(*pcfg.Tau)
				if err != nil {
					return fmt.Errorf("config: reaction %q: %w", rc.ID, err)
				}
				*product.Tau() = tau
			}
		}

		if err := applyHEval(tmpl, rc, scripts); err != nil {
			return fmt.Errorf("config: reaction %q: %w", rc.ID, err)
		}
	}

	return nil
}

// applyHEval wires rc's H-evaluator override, if any, onto tmpl. tmpl's
// reactants must already be bound (wireReactions calls this last) since
// the named presets bind their coefficients onto the leading reactants.
func applyHEval(tmpl *sgns.Template, rc ReactionConfig, scripts map[string]sgns.ScriptEvaluator) error {
	switch rc.HEval {
	case "", "default":
		return nil
	case "fa2a1r", "sshdimer":
		heval, err := sgns.BuildNamedHEvaluator(rc.HEval, tmpl.FirstReactant(), rc.HEvalParams)
		if err != nil {
			return err
		}
		tmpl.SetHEvaluator(heval)
		return nil
	case "script":
		script, ok := scripts[rc.Script]
		if !ok {
			script = sgns.NoOpScriptEvaluator{}
		}
		tmpl.SetHEvaluator(sgns.NewScriptHEval(script, nil))
		return nil
	default:
		return fmt.Errorf("unknown h_eval kind %q", rc.HEval)
	}
}

// BuildRateFromConfig constructs a sgns.RateFunction from its config oneof.
func BuildRateFromConfig(rc RateConfig) (sgns.RateFunction, error) {
	switch rc.Kind {
	case "unit":
		return sgns.UnitRate(), nil
	case "linear":
		return sgns.LinearRate(), nil
	case "gilh":
		return sgns.GilHRate(rc.N), nil
	case "pow":
		return sgns.PowRate(float64(rc.N)), nil
	case "hill":
		return sgns.HillRate(rc.An, float64(rc.N)), nil
	case "invhill":
		return sgns.InvHillRate(rc.An, float64(rc.N)), nil
	case "min":
		return sgns.MinRate(rc.A), nil
	case "max":
		return sgns.MaxRate(rc.A), nil
	case "step":
		return sgns.StepRate(rc.Thresh, rc.V), nil
	case "step2":
		return sgns.Step2Rate(rc.Thresh, rc.V), nil
	default:
		return sgns.RateFunction{}, fmt.Errorf("config: unknown rate kind %q", rc.Kind)
	}
}

// BuildSplitFromConfig constructs a sgns.SplitFunction from its config oneof.
func BuildSplitFromConfig(sc SplitConfig) (sgns.SplitFunction, error) {
	switch sc.Kind {
	case "all_or_nothing":
		return sgns.AllOrNothingSplit(sc.P, sc.Virtual), nil
	case "beta_binomial":
		return sgns.BetaBinomialSplit(sc.Alpha, sc.Beta, sc.Virtual, sc.Unbiased), nil
	case "binomial":
		return sgns.BinomialSplit(sc.P, sc.Virtual, sc.Unbiased), nil
	case "binomial_p":
		return sgns.BinomialSplitP(sc.Split1, sc.Split2, sc.Virtual, sc.Unbiased), nil
	case "pair":
		return sgns.PairSplit(sc.P, sc.R, sc.Virtual), nil
	case "take":
		return sgns.TakeSplit(sc.Fraction, sc.Virtual), nil
	case "take_round":
		return sgns.TakeRoundSplit(sc.Fraction, sc.Virtual), nil
	case "range":
		return sgns.RangeSplit(float64(sc.U), float64(sc.V), sc.Virtual), nil
	default:
		return sgns.SplitFunction{}, fmt.Errorf("config: unknown split kind %q", sc.Kind)
	}
}

// BuildDistributionFromConfig constructs a sgns.RuntimeDistribution from
// its config oneof.
func BuildDistributionFromConfig(dc DistributionConfig) (sgns.RuntimeDistribution, error) {
	switch dc.Kind {
	case "delta":
		return sgns.DeltaDistribution(dc.C), nil
	case "uniform":
		return sgns.UniformDistribution(dc.Min, dc.Max), nil
	case "gaussian":
		return sgns.GaussianDistribution(dc.Mean, dc.Stddev), nil
	case "trunc_gaussian":
		return sgns.TruncGaussianDistribution(dc.Mean, dc.Stddev), nil
	case "non_negative_gaussian":
		return sgns.NonNegGaussianDistribution(dc.Mean, dc.Stddev), nil
	case "exponential":
		return sgns.ExponentialDistribution(dc.Lambda), nil
	case "gamma":
		return sgns.GammaDistribution(dc.Shape, dc.Scale), nil
	case "beta":
		return sgns.BetaDistribution(dc.AlphaP, dc.BetaP), nil
	default:
		return sgns.RuntimeDistribution{}, fmt.Errorf("config: unknown distribution kind %q", dc.Kind)
	}
}

// BuildProgramFromConfig constructs an init Program from its config,
// resolving chemical and compartment-type names against m.
func BuildProgramFromConfig(cmds []CommandConfig, m *Model) (sgns.Program, error) {
	program := make(sgns.Program, 0, len(cmds))
	for i, cc := range cmds {
		cmd, err := buildCommand(cc, m)
		if err != nil {
			return nil, fmt.Errorf("config: init command %d: %w", i, err)
		}
		program = append(program, cmd)
	}
	return program, nil
}

func buildCommand(cc CommandConfig, m *Model) (sgns.Command, error) {
	switch cc.Kind {
	case "select_env":
		return sgns.SelectEnv{}, nil
	case "select_compartment_type":
		ct, err := resolveCompartmentType(cc.CompartmentType, m)
		if err != nil {
			return nil, err
		}
		return sgns.SelectCompartmentType{SubType: ct}, nil
	case "select_compartment":
		return sgns.SelectCompartment{NamedIndex: cc.NamedIndex}, nil
	case "instantiate_named_compartment":
		ct, err := resolveCompartmentType(cc.CompartmentType, m)
		if err != nil {
			return nil, err
		}
		return sgns.InstantiateNamedCompartment{NamedIndex: cc.NamedIndex, Type: ct}, nil
	case "instantiate_compartments":
		ct, err := resolveCompartmentType(cc.CompartmentType, m)
		if err != nil {
			return nil, err
		}
		return sgns.InstantiateCompartments{Type: ct, N: cc.N}, nil
	case "set_populations":
		idx, dist, err := resolveChemicalAndDistribution(cc, m)
		if err != nil {
			return nil, err
		}
		return sgns.SetPopulations{Index: idx, Distr: dist, Add: cc.Add}, nil
	case "add_to_wait_list":
		idx, dist, err := resolveChemicalAndDistribution(cc, m)
		if err != nil {
			return nil, err
		}
		when, err := BuildDistributionFromConfig(*cc.When)
		if err != nil {
			return nil, err
		}
		return sgns.AddToWaitList{Index: idx, Amount: dist, When: when, AddBaseTime: cc.AddBaseTime}, nil
	case "split_population":
		idx, err := resolveChemicalIndex(cc.Chemical, m)
		if err != nil {
			return nil, err
		}
		split, err := BuildSplitFromConfig(*cc.Split)
		if err != nil {
			return nil, err
		}
		return sgns.SplitPopulation{ChemicalIndex: idx, SplitIndex: cc.SplitIndex, Split: split}, nil
	case "add_population_from_split_buffer":
		idx, err := resolveChemicalIndex(cc.Chemical, m)
		if err != nil {
			return nil, err
		}
		return sgns.AddPopulationFromSplitBuffer{ChemicalIndex: idx, SplitIndex: cc.SplitIndex}, nil
	case "add_to_wait_list_from_split_buffer":
		idx, err := resolveChemicalIndex(cc.Chemical, m)
		if err != nil {
			return nil, err
		}
		when, err := BuildDistributionFromConfig(*cc.When)
		if err != nil {
			return nil, err
		}
		return sgns.AddToWaitListFromSplitBuffer{ChemicalIndex: idx, SplitIndex: cc.SplitIndex, When: when}, nil
	case "split_compartments":
		split, err := BuildSplitFromConfig(*cc.Split)
		if err != nil {
			return nil, err
		}
		compSplitIndex := cc.CompSplitIndex
		if cc.DeleteImmediately {
			compSplitIndex = sgns.NoCompartmentSplit
		}
		return sgns.SplitCompartments{SplitIndex: cc.SplitIndex, CompSplitIndex: compSplitIndex, Split: split}, nil
	case "insert_split_compartments":
		return sgns.InsertSplitCompartments{SplitIndex: cc.SplitIndex}, nil
	case "delete_compartments":
		return sgns.DeleteCompartments{}, nil
	case "update_simulation":
		return sgns.UpdateSimulation{}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %q", cc.Kind)
	}
}

func resolveCompartmentType(name string, m *Model) (*sgns.CompartmentType, error) {
	ct, ok := m.CompartmentTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown compartment type %q", name)
	}
	return ct, nil
}

func resolveChemicalIndex(name string, m *Model) (int, error) {
	chem, ok := m.Chemicals[name]
	if !ok {
		return 0, fmt.Errorf("unknown chemical %q", name)
	}
	for _, ct := range m.CompartmentTypes {
		if idx := ct.GetChemicalIndex(chem); idx >= 0 {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("chemical %q is not indexed by any compartment type", name)
}

func resolveChemicalAndDistribution(cc CommandConfig, m *Model) (int, sgns.RuntimeDistribution, error) {
	idx, err := resolveChemicalIndex(cc.Chemical, m)
	if err != nil {
		return 0, sgns.RuntimeDistribution{}, err
	}
	if cc.Distribution == nil {
		return 0, sgns.RuntimeDistribution{}, fmt.Errorf("missing distribution for chemical %q", cc.Chemical)
	}
	dist, err := BuildDistributionFromConfig(*cc.Distribution)
	if err != nil {
		return 0, sgns.RuntimeDistribution{}, err
	}
	return idx, dist, nil
}
