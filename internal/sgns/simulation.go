package sgns

import (
	"math"
	"math/rand"
)

// Simulation is the top-level driver: it owns the main event queue every
// compartment's umbrella lives in, a parallel queue for sampling and other
// out-of-band events that must interleave with the main trajectory without
// belonging to it, the shared update list every nested queue drains into,
// and the seeded RNG every reaction and distribution in the run draws from.
type Simulation struct {
	rng *rand.Rand

	simQueue      *Queue
	parallelQueue *Queue

	compartmentInstantiationIndex int
	totalSteps                    int64
	lastEventTime                 float64
}

// NewSimulation creates a simulation seeded deterministically: the same
// seed, given the same sequence of initialization commands, always
// produces the same trajectory, step count, and event ordering.
func NewSimulation(seed int64) *Simulation {
	s := &Simulation{rng: rand.New(rand.NewSource(seed))}
	s.simQueue = NewQueue()
	s.parallelQueue = newQueueWithUpdates(s.simQueue.Updates())
	return s
}

func (s *Simulation) SimQueue() *Queue { return s.simQueue }

// ParallelQueue returns the queue the step loop merges against the main
// queue on every step (see internalStep). Nothing in this package enqueues
// into it; it exists for callers that need to interleave their own events
// (e.g. periodic sampling checkpoints) into the trajectory without
// perturbing the main queue's own event ordering.
func (s *Simulation) ParallelQueue() *Queue { return s.parallelQueue }
func (s *Simulation) RNG() RandSource       { return s.rng }
func (s *Simulation) RawRNG() *rand.Rand    { return s.rng }
func (s *Simulation) Time() float64         { return s.simQueue.BaseTime() }
func (s *Simulation) StepCount() int64      { return s.totalSteps }

func (s *Simulation) SetTime(t float64) { s.simQueue.SetBaseTime(t) }

// NewCompartmentInstantiation hands out a monotonically increasing index
// identifying the Nth compartment ever created in this simulation,
// independent of species population or hierarchy position.
func (s *Simulation) NewCompartmentInstantiation() int {
	idx := s.compartmentInstantiationIndex
	s.compartmentInstantiationIndex++
	return idx
}

// Update drains the shared update list until it's empty, calling Update()
// on everything queued there. A single Update() call (e.g. an umbrella
// re-seating itself) can enqueue more work, so this keeps draining rather
// than doing one fixed pass.
func (s *Simulation) Update() {
	for {
		pending := s.simQueue.Updates().Drain()
		if len(pending) == 0 {
			return
		}
		for _, stream := range pending {
			stream.Update()
		}
	}
}

// internalStep merges the main queue and the parallel queue and fires
// whichever has the earlier next event, provided that event's time doesn't
// exceed stopTime. Firing the main queue's event only advances the main
// queue's own base time; firing the parallel queue's event advances both
// queues' base times, since the main queue must never fall behind an event
// that has already happened. Returns false once neither queue has an event
// before stopTime, in which case the main queue's base time is left at
// stopTime — unless stopTime is +Inf (RunStep's exhausted-queue case), in
// which case the base time is left untouched rather than pushed out to
// +Inf itself, which would violate the queue's own invariant that every
// future event's time is at least its base time.
func (s *Simulation) internalStep(stopTime float64) bool {
	simTime := s.simQueue.PeekTime()
	parTime := s.parallelQueue.PeekTime()

	switch {
	case parTime > simTime:
		if simTime > stopTime || math.IsInf(simTime, 1) {
			break
		}
		s.totalSteps++
		s.simQueue.SetBaseTime(simTime)
		s.lastEventTime = simTime
		s.simQueue.PeekStream().Trigger()
		s.Update()
		return true
	case stopTime >= parTime:
		if math.IsInf(parTime, 1) {
			break
		}
		s.totalSteps++
		s.parallelQueue.SetBaseTime(parTime)
		s.simQueue.SetBaseTime(parTime)
		s.lastEventTime = parTime
		s.parallelQueue.PeekStream().Trigger()
		s.Update()
		return true
	}

	if !math.IsInf(stopTime, 1) {
		s.simQueue.SetBaseTime(stopTime)
	}
	return false
}

// RunStep dispatches exactly one event: the earliest of the main queue's
// next event, the parallel queue's next event, and any update work already
// pending. Returns false once nothing is left to do (both queues are
// permanently empty or every remaining event has a propensity of zero,
// i.e. time +Inf).
func (s *Simulation) RunStep() bool {
	s.Update()
	return s.internalStep(math.Inf(1))
}

// RunUntil advances the simulation, one event at a time, merging the main
// and parallel queues, firing every event whose time doesn't exceed
// stopTime. The main queue's base time is left at stopTime once nothing
// remains to fire at or before it.
func (s *Simulation) RunUntil(stopTime float64) {
	for {
		s.Update()
		if !s.internalStep(stopTime) {
			return
		}
	}
}

// RunFor advances the simulation by deltaT of simulated time from its
// current base time.
func (s *Simulation) RunFor(deltaT float64) {
	s.RunUntil(s.simQueue.BaseTime() + deltaT)
}
