package sgns

import (
	"math/rand"
	"testing"
)

func TestTakeSplitIsDeterministicFloorOfFraction(t *testing.T) {
	s := TakeSplit(0.3, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	remaining, taken := s.Split(10, ctx)
	if taken != 3 {
		t.Errorf("taken = %d, want 3", taken)
	}
	if remaining != 7 {
		t.Errorf("remaining = %d, want 7", remaining)
	}
	if remaining+taken != 10 {
		t.Errorf("remaining+taken = %d, want 10", remaining+taken)
	}
}

func TestTakeSplitVirtualDoesNotConsume(t *testing.T) {
	s := TakeSplit(0.5, true)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	remaining, taken := s.Split(10, ctx)
	if taken != 5 {
		t.Errorf("taken = %d, want 5", taken)
	}
	if remaining != 10 {
		t.Errorf("expected a virtual split to leave the remainder untouched, got %d", remaining)
	}
}

func TestTakeRoundSplitRoundsToNearest(t *testing.T) {
	s := TakeRoundSplit(0.55, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	_, taken := s.Split(10, ctx)
	if taken != 6 { // floor(10*0.55 + 0.5) = floor(6.0) = 6
		t.Errorf("taken = %d, want 6", taken)
	}
}

func TestAllOrNothingSplitTakesEverythingOrNothing(t *testing.T) {
	s := AllOrNothingSplit(1.0, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	remaining, taken := s.Split(10, ctx)
	if taken != 10 || remaining != 0 {
		t.Errorf("p=1 should take everything, got remaining=%d taken=%d", remaining, taken)
	}

	s = AllOrNothingSplit(0.0, false)
	remaining, taken = s.Split(10, ctx)
	if taken != 0 || remaining != 10 {
		t.Errorf("p=0 should take nothing, got remaining=%d taken=%d", remaining, taken)
	}
}

func TestRangeSplitBelowUpperAndAboveBounds(t *testing.T) {
	s := RangeSplit(5, 15, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}

	if _, taken := s.Split(3, ctx); taken != 0 {
		t.Errorf("n below u should take nothing, got %d", taken)
	}
	if _, taken := s.Split(10, ctx); taken != 5 {
		t.Errorf("n=10 between u=5 and v=15 should take n-u=5, got %d", taken)
	}
	if _, taken := s.Split(100, ctx); taken != 10 {
		t.Errorf("n above v should cap at v-u=10, got %d", taken)
	}
}

func TestBinomialSplitStaysWithinBounds(t *testing.T) {
	s := BinomialSplit(0.4, false, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	for i := 0; i < 100; i++ {
		remaining, taken := s.Split(50, ctx)
		if taken < 0 || taken > 50 {
			t.Fatalf("taken = %d, want in [0,50]", taken)
		}
		if remaining+taken != 50 {
			t.Fatalf("remaining+taken = %d, want 50", remaining+taken)
		}
	}
}

func TestBinomialSplitPDerivesProbabilityFromBuffer(t *testing.T) {
	s := BinomialSplitP(1, 2, false, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1)), Buffer: []int64{100, 0}}
	// l1=100, l2=0 -> p=1.0, should take everything.
	_, taken := s.Split(20, ctx)
	if taken != 20 {
		t.Errorf("expected p=1 to take everything, got taken=%d", taken)
	}
}

func TestBinomialSplitPFallsBackToEvenOddsWhenBufferIsEmpty(t *testing.T) {
	s := BinomialSplitP(1, 2, false, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1)), Buffer: []int64{0, 0}}
	remaining, taken := s.Split(1000, ctx)
	if remaining+taken != 1000 {
		t.Fatalf("remaining+taken = %d, want 1000", remaining+taken)
	}
	// With p=0.5 over n=1000 trials, taken should land well within a wide band.
	if taken < 350 || taken > 650 {
		t.Errorf("taken = %d, expected roughly half of 1000 with p=0.5", taken)
	}
}

func TestPairSplitConservesPopulation(t *testing.T) {
	s := PairSplit(0.5, 0.5, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	for i := 0; i < 100; i++ {
		remaining, taken := s.Split(40, ctx)
		if remaining+taken != 40 {
			t.Fatalf("remaining+taken = %d, want 40", remaining+taken)
		}
	}
}

func TestBetaBinomialSplitConservesPopulation(t *testing.T) {
	s := BetaBinomialSplit(2, 3, false, false)
	ctx := &SplitContext{RNG: rand.New(rand.NewSource(1))}
	for i := 0; i < 100; i++ {
		remaining, taken := s.Split(60, ctx)
		if remaining+taken != 60 {
			t.Fatalf("remaining+taken = %d, want 60", remaining+taken)
		}
	}
}

func TestBinomialHelperEdgeCases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := binomial(rng, 0.5, 0); got != 0 {
		t.Errorf("binomial with n=0 should be 0, got %d", got)
	}
	if got := binomial(rng, 0, 100); got != 0 {
		t.Errorf("binomial with p=0 should be 0, got %d", got)
	}
	if got := binomial(rng, 1, 100); got != 100 {
		t.Errorf("binomial with p=1 should be n, got %d", got)
	}
}
