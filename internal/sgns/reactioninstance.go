package sgns

import "math"

// Stoichiometry is the per-instance glue between a reaction Template bound
// to a specific set of compartments and the generic scheduling machinery in
// Instance. It plays the role the original's template-parameterized
// Stoichiometry classes played, but as an interface: Go has no equivalent
// of binding a type parameter per call site, so TemplateStoich (in
// template.go) is the single concrete implementation every reaction goes
// through, selected by reactant/product arity at instantiation time.
type Stoichiometry interface {
	CalcMarkovA() float64
	DoReaction()
	DoReactionExtra()
	Destroy()
	RNG() RandSource
}

// RandSource is the subset of *rand.Rand the scheduling core needs. Kept as
// an interface so tests can supply a deterministic stub without pulling in
// math/rand.
type RandSource interface {
	Float64() float64
	ExpFloat64() float64
	NormFloat64() float64
}

// tauStrategy computes a Stream's next absolute firing time from its
// current propensity, given the fresh draw (NewNextTime) or the
// memoryless Gibson-Bruck rescale (UpdateNextTime) cases.
type tauStrategy interface {
	NewNextTime(t float64, stoich Stoichiometry) float64
	UpdateNextTime(t float64, stoich Stoichiometry) float64
}

// markovTau is the tau-distribution for ordinary exponential (Markov)
// reactions: a fresh draw is t + Exp(oldA); an update under an unchanged
// propensity keeps the same time, and under a changed propensity rescales
// the remaining wait time by oldA/newA, preserving the memoryless property.
type markovTau struct {
	oldA  float64
	nextT float64
}

func (m *markovTau) NewNextTime(t float64, stoich Stoichiometry) float64 {
	m.oldA = stoich.CalcMarkovA()
	if m.oldA > 0 {
		m.nextT = t + stoich.RNG().ExpFloat64()/m.oldA
	} else {
		m.nextT = math.Inf(1)
	}
	return m.nextT
}

func (m *markovTau) UpdateNextTime(t float64, stoich Stoichiometry) float64 {
	if m.oldA > 0 {
		newA := stoich.CalcMarkovA()
		m.nextT = t + (m.nextT-t+math.SmallestNonzeroFloat64)*m.oldA/newA
		m.oldA = newA
		return m.nextT
	}
	return m.NewNextTime(t, stoich)
}

// instantTau is for reactions that fire immediately, deterministically, the
// instant their propensity function becomes positive — no exponential draw.
type instantTau struct{}

func (instantTau) NewNextTime(t float64, stoich Stoichiometry) float64 {
	if stoich.CalcMarkovA() > 0 {
		return t
	}
	return math.Inf(1)
}

func (i instantTau) UpdateNextTime(t float64, stoich Stoichiometry) float64 {
	return i.NewNextTime(t, stoich)
}

// Instance is the scheduling wrapper around a bound Stoichiometry: it owns
// the Event slot, drives the tau strategy, and reacts to dependency-change
// notifications by deferring itself onto the queue's update list rather
// than recomputing its propensity inline (popUpdate/scheduleForUpdate in
// the source this is grounded on).
type Instance struct {
	event Event

	queue  *Queue
	stoich Stoichiometry
	tau    tauStrategy

	updSelf  bool
	fireOnce bool
}

func (r *Instance) ev() *Event { return &r.event }

// NewInstance creates an ordinary, repeatedly-firing Markov reaction
// instance bound to queue.
func NewInstance(queue *Queue, stoich Stoichiometry) *Instance {
	return &Instance{queue: queue, stoich: stoich, tau: &markovTau{}}
}

// NewFireOnceInstance creates a reaction instance that fires exactly once
// and is never rescheduled — used for reactions that destroy the
// compartment (or other state) they're bound to.
func NewFireOnceInstance(queue *Queue, stoich Stoichiometry) *Instance {
	return &Instance{queue: queue, stoich: stoich, tau: &markovTau{}, fireOnce: true}
}

// NewInstantInstance creates a reaction instance with no exponential delay:
// it fires as soon as its propensity function becomes positive.
func NewInstantInstance(queue *Queue, stoich Stoichiometry) *Instance {
	return &Instance{queue: queue, stoich: stoich, tau: instantTau{}}
}

// Begin enqueues the instance for the first time. Must be called exactly
// once, after the instance's dependencies have been registered.
func (r *Instance) Begin() {
	r.updSelf = false
	t := r.tau.NewNextTime(r.queue.UpdatedBaseTime(), r.stoich)
	r.queue.Enqueue(r, t)
}

func (r *Instance) Trigger() {
	r.updSelf = true
	r.stoich.DoReaction()
	if r.fireOnce {
		r.stoich.DoReactionExtra()
		r.queue.Dequeue(r)
		r.stoich.Destroy()
		return
	}
	t := r.tau.NewNextTime(r.queue.BaseTime(), r.stoich)
	r.queue.Reposition(r, t)
	r.updSelf = false
	r.stoich.DoReactionExtra()
}

func (r *Instance) Update() {
	r.updSelf = false
	t := r.tau.UpdateNextTime(r.queue.UpdatedBaseTime(), r.stoich)
	r.queue.Reposition(r, t)
}

// PopUpdate is the dependency-graph notification hook: a compartment calls
// this on every reaction instance depending on a species whose population
// changed. It doesn't recompute anything itself — it just ensures Update()
// runs once before the next event is dispatched, even if several
// dependencies fire before that happens.
func (r *Instance) PopUpdate() {
	if !r.updSelf {
		r.updSelf = true
		r.queue.ScheduleForUpdate(r)
	}
}

// Close releases the instance's dependency registrations and removes it
// from its queue. Go has no destructors, so callers that discard an
// Instance outside of a FireOnce trigger (e.g. a compartment being torn
// down) must call this explicitly.
func (r *Instance) Close() {
	if r.event.IsEnqueued() {
		r.queue.Dequeue(r)
	}
	r.stoich.Destroy()
}
