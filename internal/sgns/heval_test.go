package sgns

import (
	"errors"
	"math"
	"testing"
)

func buildHEvalReactants(n int) *Reactant {
	var head *Reactant
	for i := n - 1; i >= 0; i-- {
		head = newReactant(0, i, 0, head)
	}
	return head
}

func TestBuildNamedHEvaluatorRejectsWrongParamCount(t *testing.T) {
	r := buildHEvalReactants(3)
	if _, err := BuildNamedHEvaluator("fa2a1r", r, []float64{1, 2, 3}); err == nil {
		t.Error("expected an error for fa2a1r with too few params")
	}
	if _, err := BuildNamedHEvaluator("sshdimer", r, nil); err == nil {
		t.Error("expected an error for sshdimer with no params")
	}
	if _, err := BuildNamedHEvaluator("nonsense", r, nil); err == nil {
		t.Error("expected an error for an unknown named h-evaluator")
	}
}

func TestBuildNamedHEvaluatorRejectsTooFewReactants(t *testing.T) {
	if _, err := BuildNamedHEvaluator("fa2a1r", buildHEvalReactants(2), make([]float64, 8)); err == nil {
		t.Error("expected fa2a1r to require 3 reactants")
	}
	if _, err := BuildNamedHEvaluator("sshdimer", buildHEvalReactants(1), []float64{50}); err == nil {
		t.Error("expected sshdimer to require 2 reactants")
	}
}

func TestFa2a1rHEvalMatchesClosedForm(t *testing.T) {
	r := buildHEvalReactants(3)
	params := []float64{0.1, 0.2, 0.3, 0.05, 0.01, 0.02, 0.015, 0.001}
	heval, err := BuildNamedHEvaluator("fa2a1r", r, params)
	if err != nil {
		t.Fatalf("BuildNamedHEvaluator: %v", err)
	}

	comps := []*Compartment{{}}
	comps[0].SetChemicalCount(3)
	comps[0].SetPopulationNoUpdate(0, 10)
	comps[0].SetPopulationNoUpdate(1, 4)
	comps[0].SetPopulationNoUpdate(2, 2)

	k0, k1, k2, k3, k12, k23, k13, k123 := params[0], params[1], params[2], params[3], params[4], params[5], params[6], params[7]
	x1, x2, x3 := 10.0, 4.0, 2.0
	want := (k0 + k1*x1 + k2*x2 + k12*x1*x2) /
		(1 + k1*x1 + k2*x2 + k12*x1*x2 + k3*x3 + k13*x1*x3 + k23*x2*x3 + k123*x1*x2*x3)

	if got := heval(comps, r); math.Abs(got-want) > 1e-9 {
		t.Errorf("fa2a1rHEval = %v, want %v", got, want)
	}
}

func TestSshdimerHEvalMatchesClosedForm(t *testing.T) {
	r := buildHEvalReactants(2)
	k := 50.0
	heval, err := BuildNamedHEvaluator("sshdimer", r, []float64{k})
	if err != nil {
		t.Fatalf("BuildNamedHEvaluator: %v", err)
	}

	comps := []*Compartment{{}}
	comps[0].SetChemicalCount(2)
	comps[0].SetPopulationNoUpdate(0, 300)
	comps[0].SetPopulationNoUpdate(1, 300)

	x1, x2 := 300.0, 300.0
	x1x2k := 1 + (x1+x2)/k
	want := k / 2 * (1 + (x1+x2)/k - math.Sqrt(x1x2k*x1x2k-4*x1*x2/(k*k)))

	if got := heval(comps, r); math.Abs(got-want) > 1e-9 {
		t.Errorf("sshdimerHEval = %v, want %v", got, want)
	}
}

func TestSshdimerHEvalNeverExceedsEitherMonomer(t *testing.T) {
	r := buildHEvalReactants(2)
	heval, err := BuildNamedHEvaluator("sshdimer", r, []float64{10})
	if err != nil {
		t.Fatalf("BuildNamedHEvaluator: %v", err)
	}
	comps := []*Compartment{{}}
	comps[0].SetChemicalCount(2)
	comps[0].SetPopulationNoUpdate(0, 5)
	comps[0].SetPopulationNoUpdate(1, 1000)

	if got := heval(comps, r); got < 0 || got > 5 {
		t.Errorf("sshdimerHEval = %v, want in [0,5] (cannot exceed the scarcer monomer)", got)
	}
}

type fakeScript struct {
	result float64
	err    error
}

func (f *fakeScript) Eval(populations []int64) (float64, error) { return f.result, f.err }
func (f *fakeScript) Snapshot() ScriptEvaluator                 { return &fakeScript{result: f.result, err: f.err} }

func newHEvalTestCompartments(chemicalCount int) []*Compartment {
	c := &Compartment{}
	c.SetChemicalCount(chemicalCount)
	return []*Compartment{c}
}

func TestNewScriptHEvalReturnsTheScriptsValue(t *testing.T) {
	heval := NewScriptHEval(&fakeScript{result: 3.5}, nil)
	r := buildHEvalReactants(2)
	comps := newHEvalTestCompartments(2)
	if got := heval(comps, r); got != 3.5 {
		t.Errorf("heval() = %v, want 3.5", got)
	}
}

func TestNewScriptHEvalFallsBackToOneOnError(t *testing.T) {
	heval := NewScriptHEval(&fakeScript{err: errors.New("boom")}, nil)
	r := buildHEvalReactants(2)
	comps := newHEvalTestCompartments(2)
	if got := heval(comps, r); got != 1 {
		t.Errorf("heval() = %v, want 1 on script failure", got)
	}
}

func TestNewScriptHEvalFallsBackToOneWithNoScript(t *testing.T) {
	heval := NewScriptHEval(nil, nil)
	r := buildHEvalReactants(1)
	comps := newHEvalTestCompartments(1)
	if got := heval(comps, r); got != 1 {
		t.Errorf("heval() = %v, want 1 with no script bound", got)
	}
}

func TestNoOpScriptEvaluatorAlwaysReturnsOne(t *testing.T) {
	ev := NoOpScriptEvaluator{}
	h, err := ev.Eval([]int64{1, 2, 3})
	if err != nil || h != 1 {
		t.Errorf("Eval() = (%v, %v), want (1, nil)", h, err)
	}
	if _, ok := ev.Snapshot().(NoOpScriptEvaluator); !ok {
		t.Error("expected Snapshot() to return another NoOpScriptEvaluator")
	}
}
