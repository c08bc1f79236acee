// Package config defines the JSON-tagged configuration structs for an sgns
// model — chemicals, compartment types, and the reactions inside each
// type's bank — plus validation and a builder that turns a parsed config
// into live internal/sgns objects.
package config

import "github.com/achemlab/sgnssim/internal/sgns"

// ChemicalConfig declares one species.
type ChemicalConfig struct {
	Name   string `json:"name"`
	Output *bool  `json:"output,omitempty"`
}

// ShouldOutput reports the chemical's output flag, defaulting to true.
func (c ChemicalConfig) ShouldOutput() bool { return c.Output == nil || *c.Output }

// RateConfig is a JSON-tagged oneof for internal/sgns.RateFunction. Kind
// selects which constructor to use; the remaining fields are interpreted
// according to Kind.
type RateConfig struct {
	Kind string `json:"kind"`

	N      int     `json:"n,omitempty"`      // gilh, pow, hill, invhill
	An     float64 `json:"an,omitempty"`     // hill, invhill
	A      float64 `json:"a,omitempty"`      // min, max
	Thresh int64   `json:"thresh,omitempty"` // step, step2
	V      float64 `json:"v,omitempty"`      // step, step2
}

// SplitConfig is a JSON-tagged oneof for internal/sgns.SplitFunction.
type SplitConfig struct {
	Kind string `json:"kind"`

	P          float64 `json:"p,omitempty"`           // all_or_nothing, binomial, pair
	Alpha      float64 `json:"alpha,omitempty"`       // beta_binomial
	Beta       float64 `json:"beta,omitempty"`        // beta_binomial
	Split1     int     `json:"split1,omitempty"`      // binomial_p
	Split2     int     `json:"split2,omitempty"`      // binomial_p
	R          float64 `json:"r,omitempty"`           // pair
	Fraction   float64 `json:"fraction,omitempty"`    // take, take_round
	U          int64   `json:"u,omitempty"`            // range
	V          int64   `json:"v,omitempty"`            // range
	Virtual    bool    `json:"virtual,omitempty"`
	Unbiased   bool    `json:"unbiased,omitempty"`
}

// DistributionConfig is a JSON-tagged oneof for
// internal/sgns.RuntimeDistribution.
type DistributionConfig struct {
	Kind string `json:"kind"`

	C      float64 `json:"c,omitempty"`      // delta
	Min    float64 `json:"min,omitempty"`    // uniform
	Max    float64 `json:"max,omitempty"`    // uniform
	Mean   float64 `json:"mean,omitempty"`   // gaussian variants
	Stddev float64 `json:"stddev,omitempty"` // gaussian variants
	Lambda float64 `json:"lambda,omitempty"` // exponential
	Shape  float64 `json:"shape,omitempty"`  // gamma
	Scale  float64 `json:"scale,omitempty"`  // gamma
	AlphaP float64 `json:"alpha,omitempty"`  // beta
	BetaP  float64 `json:"beta,omitempty"`   // beta
}

// ReactantConfig is one term consumed by a reaction.
type ReactantConfig struct {
	Species     string      `json:"species"`
	Amount      int64       `json:"amount"`
	Compartment int         `json:"compartment,omitempty"`
	Rate        *RateConfig `json:"rate,omitempty"`
}

// ProductConfig is one term produced by a reaction.
type ProductConfig struct {
	Species     string              `json:"species"`
	Amount      int64               `json:"amount"`
	Compartment int                 `json:"compartment,omitempty"`
	Tau         *DistributionConfig `json:"tau,omitempty"`
}

// ReactionConfig declares one reaction registered into its compartment
// type's bank. Umbrella means this reaction's firing gates a nested set of
// sub-reactions (registered separately, targeting this one by ID via
// ParentReaction). FireOnce means the reaction instance self-closes after
// its first firing.
type ReactionConfig struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Umbrella  bool             `json:"umbrella,omitempty"`
	FireOnce  bool             `json:"fire_once,omitempty"`
	C         float64          `json:"c,omitempty"`
	Reactants []ReactantConfig `json:"reactants"`
	Products  []ProductConfig  `json:"products,omitempty"`

	// ParentReaction, if set, names the umbrella reaction (in this same
	// compartment type's bank, or an ancestor's — see ParentDepth) this
	// reaction is nested inside.
	ParentReaction string `json:"parent_reaction,omitempty"`
	// ParentDepth is how many ancestor compartments up ParentReaction's
	// bank lives in: 0 means this type's own bank.
	ParentDepth int `json:"parent_depth,omitempty"`

	// HEval overrides this reaction's H-function: "fa2a1r", "sshdimer",
	// or "script" (delegate to the ScriptEvaluator named by Script in the
	// model's ScriptEvaluators). Empty or "default" leaves the ordinary
	// product-of-reactant-rates H-function in place.
	HEval string `json:"h_eval,omitempty"`
	// HEvalParams supplies HEval's scalar coefficients, interpreted
	// positionally: fa2a1r takes 8 (k0,k1,k2,k3,k12,k23,k13,k123),
	// sshdimer takes 1 (k). Unused by "script".
	HEvalParams []float64 `json:"h_eval_params,omitempty"`
	// Script names an entry in the model's ScriptEvaluators map, used
	// when HEval is "script".
	Script string `json:"script,omitempty"`
}

// CompartmentTypeConfig declares one compartment type: its parent type (if
// any), the chemicals it tracks, and the reactions in its bank.
type CompartmentTypeConfig struct {
	Name      string           `json:"name"`
	Parent    string           `json:"parent,omitempty"`
	Chemicals []string         `json:"chemicals"`
	Reactions []ReactionConfig `json:"reactions,omitempty"`
	Output    *bool            `json:"output,omitempty"`
}

// ShouldOutput reports the compartment type's output flag, defaulting to
// true.
func (c CompartmentTypeConfig) ShouldOutput() bool { return c.Output == nil || *c.Output }

// ModelConfig is a complete sgns model: its chemical species and the tree
// of compartment types (identified by CompartmentTypeConfig.Parent chains)
// that react them.
type ModelConfig struct {
	Name             string                  `json:"name"`
	Chemicals        []ChemicalConfig        `json:"chemicals"`
	CompartmentTypes []CompartmentTypeConfig `json:"compartment_types"`
	Init             []CommandConfig         `json:"init,omitempty"`

	// Seed fixes the simulation's RNG seed. Left nil, a caller (e.g.
	// cmd/sgns-sim) is expected to default it the way the original does:
	// wall clock combined with process id and an internal skew, so two
	// runs launched in the same instant still get distinct streams.
	Seed *int64 `json:"seed,omitempty"`

	// ScriptEvaluators maps a name a reaction's Script field can
	// reference (when HEval is "script") to an already-constructed
	// sgns.ScriptEvaluator. Deliberately not JSON-tagged: no script
	// runtime is loaded from a model file in this module, so this is
	// populated by the embedding Go program, not by a loader. A
	// reaction naming a script that isn't present here falls back to
	// sgns.NoOpScriptEvaluator.
	ScriptEvaluators map[string]sgns.ScriptEvaluator `json:"-"`
}

// CommandConfig is a JSON-tagged oneof for one internal/sgns.Command. Kind
// selects which command it builds; the remaining fields are interpreted
// according to Kind, mirroring initcmd.go's closed set one-for-one.
type CommandConfig struct {
	Kind string `json:"kind"`

	CompartmentType string `json:"compartment_type,omitempty"` // select_compartment_type, instantiate_compartments, instantiate_named_compartment
	NamedIndex      int    `json:"named_index,omitempty"`      // select_compartment, instantiate_named_compartment
	N               int    `json:"n,omitempty"`                // instantiate_compartments

	Chemical       string               `json:"chemical,omitempty"` // set_populations, add_to_wait_list, split_population, add_population_from_split_buffer, add_to_wait_list_from_split_buffer
	Distribution    *DistributionConfig `json:"distribution,omitempty"`
	When            *DistributionConfig `json:"when,omitempty"`
	Add             bool                `json:"add,omitempty"`
	AddBaseTime     bool                `json:"add_base_time,omitempty"`

	SplitIndex        int          `json:"split_index,omitempty"`         // split_population, split_compartments, add_population_from_split_buffer, add_to_wait_list_from_split_buffer, insert_split_compartments
	CompSplitIndex    int          `json:"comp_split_index,omitempty"`    // split_compartments, when DeleteImmediately is false
	DeleteImmediately bool         `json:"delete_immediately,omitempty"`  // split_compartments: destroy split-off compartments rather than storing them for insert_split_compartments
	Split             *SplitConfig `json:"split,omitempty"`               // split_population, split_compartments
}
