package sgns

import (
	"fmt"
	"math"

	"github.com/achemlab/sgnssim/internal/logger"
)

// BuildNamedHEvaluator constructs one of the named H-evaluator presets —
// "fa2a1r" or "sshdimer" — binding params onto the leading reactants of
// firstReactant's list (via SetHParams) and returning the HEvaluator that
// reads them back. Reactants beyond what the preset consumes are folded in
// via their own rate function, same as defaultHEval.
func BuildNamedHEvaluator(name string, firstReactant *Reactant, params []float64) (HEvaluator, error) {
	switch name {
	case "fa2a1r":
		if len(params) != 8 {
			return nil, fmt.Errorf("sgns: h-evaluator fa2a1r expects 8 params, got %d", len(params))
		}
		r := firstReactant
		if r == nil || r.next == nil || r.next.next == nil {
			return nil, fmt.Errorf("sgns: h-evaluator fa2a1r requires 3 reactants in the same compartment")
		}
		r.SetHParams(params[0], params[7], 0)    // k0, k123
		r.next.SetHParams(params[1], params[2], params[3])      // k1, k2, k3
		r.next.next.SetHParams(params[4], params[5], params[6]) // k12, k23, k13
		return fa2a1rHEval, nil
	case "sshdimer":
		if len(params) != 1 {
			return nil, fmt.Errorf("sgns: h-evaluator sshdimer expects 1 param, got %d", len(params))
		}
		r := firstReactant
		if r == nil || r.next == nil {
			return nil, fmt.Errorf("sgns: h-evaluator sshdimer requires at least 2 reactants in the same compartment")
		}
		r.SetHParams(0, 0, params[0]) // k
		return sshdimerHEval, nil
	default:
		return nil, fmt.Errorf("sgns: unknown named h-evaluator %q", name)
	}
}

// fa2a1rHEval implements "Fractional Activation, Two Activators, One
// Repressor": x1 and x2 each activate (possibly cooperatively, via k12),
// x3 represses (alone or cooperatively with either activator, via
// k13/k23/k123). Any reactants beyond the three bound by
// BuildNamedHEvaluator are folded in through their own rate function.
func fa2a1rHEval(ctx []*Compartment, r *Reactant) float64 {
	k0, k123, _ := r.HParams()
	x1 := float64(r.GetPopulationIn(ctx))
	r = r.next

	k1, k2, k3 := r.HParams()
	x2 := float64(r.GetPopulationIn(ctx))
	r = r.next

	k12, k23, k13 := r.HParams()
	x3 := float64(r.GetPopulationIn(ctx))
	r = r.next

	h := (k0 + k1*x1 + k2*x2 + k12*x1*x2) /
		(1 + k1*x1 + k2*x2 + k12*x1*x2 + k3*x3 + k13*x1*x3 + k23*x2*x3 + k123*x1*x2*x3)
	for ; r != nil; r = r.next {
		h *= r.Evaluate(ctx)
	}
	return h
}

// sshdimerHEval implements the steady-state heterodimer approximation: two
// monomer populations x1, x2 that dimerize and dissociate fast enough
// relative to the reaction this gates that the dimer count can be treated
// as always at its equilibrium value for the given dissociation constant k.
func sshdimerHEval(ctx []*Compartment, r *Reactant) float64 {
	_, _, k := r.HParams()
	x1 := float64(r.GetPopulationIn(ctx))
	r = r.next

	x2 := float64(r.GetPopulationIn(ctx))
	r = r.next

	x1x2k := 1 + (x1+x2)/k
	h := k / 2 * (1 + (x1+x2)/k - math.Sqrt(x1x2k*x1x2k-4*x1*x2/(k*k)))
	for ; r != nil; r = r.next {
		h *= r.Evaluate(ctx)
	}
	return h
}

// ScriptEvaluator is the external-scripting hook a reaction's H-function
// can delegate to (the "lua" H-evaluator in the closed set this is
// modeled on), entirely outside this package: no script runtime lives
// here, only the seam a caller can plug one into.
type ScriptEvaluator interface {
	// Eval receives the current population of every reactant, in list
	// order, and returns the reaction's H-function value.
	Eval(populations []int64) (float64, error)

	// Snapshot returns an independent copy of the evaluator, safe to bind
	// into a separate goroutine's reactions. Nothing in this module calls
	// it: internal/batch runs every replicate against the evaluators bound
	// when the model was built, without taking a snapshot per worker or
	// per replicate.
	Snapshot() ScriptEvaluator
}

// NoOpScriptEvaluator is the default ScriptEvaluator: it always returns 1,
// the H-function value an absent or failing script falls back to. Used
// when a reaction names a script evaluator that was never registered.
type NoOpScriptEvaluator struct{}

func (NoOpScriptEvaluator) Eval(populations []int64) (float64, error) { return 1, nil }
func (NoOpScriptEvaluator) Snapshot() ScriptEvaluator                 { return NoOpScriptEvaluator{} }

// NewScriptHEval builds an HEvaluator that calls script with every bound
// reactant's current population. A failing call (script == nil, or Eval
// returning an error) logs and falls back to H = 1, rather than aborting
// the simulation — a single misbehaving script call should not take down
// an otherwise-running replicate. log may be nil, in which case nothing is
// logged.
func NewScriptHEval(script ScriptEvaluator, log logger.Logger) HEvaluator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return func(ctx []*Compartment, firstReactant *Reactant) float64 {
		if script == nil {
			log.Warnf("sgns: script h-evaluator invoked with no script bound, falling back to H=1")
			return 1
		}
		var pops []int64
		for r := firstReactant; r != nil; r = r.next {
			pops = append(pops, r.GetPopulationIn(ctx))
		}
		h, err := script.Eval(pops)
		if err != nil {
			log.Warnf("sgns: script h-evaluator failed: %v, falling back to H=1", err)
			return 1
		}
		return h
	}
}
