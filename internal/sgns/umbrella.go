package sgns

import "math"

// UmbrellaInstance is a reaction instance that is simultaneously the event
// queue for a nested group of sub-streams. Its own next-firing time in the
// parent queue tracks the earliest event inside its inner queue, projected
// through its own propensity (oldA): a high-propensity umbrella makes time
// pass faster for everything nested inside it, a zero-propensity umbrella
// freezes its contents (their absolute parent-queue time pins at +Inf)
// without halting any direct mutation of their state from outside.
//
// Compartment embeds one of these by value so that every compartment is,
// structurally, a propensity-1 pass-through umbrella sitting directly
// under the simulation's main queue — plain reaction instances bound to a
// compartment are enqueued into its inner queue, not the top-level one.
type UmbrellaInstance struct {
	event Event

	parent *Queue
	inner  *Queue
	stoich Stoichiometry

	oldA      float64
	lastBaseT float64
	updSelf   bool
}

func (u *UmbrellaInstance) ev() *Event { return &u.event }

// NewUmbrellaInstance creates a standalone umbrella bound to parent, with a
// fresh inner queue that shares parent's UpdateList. Used for reaction
// templates explicitly flagged as umbrella reactions; Compartment instead
// calls init directly on its own embedded UmbrellaInstance field so that
// the closures below close over the compartment's address, not a
// throwaway value that gets copied.
func NewUmbrellaInstance(parent *Queue, stoich Stoichiometry) *UmbrellaInstance {
	u := &UmbrellaInstance{}
	u.init(parent, stoich)
	return u
}

// init wires up the inner queue's callbacks to point back at u itself. It
// must be called on the UmbrellaInstance's final address — never on a value
// that will subsequently be copied — since onInnerNewMin and
// adjustedBaseTime are bound closures, not dispatched through an interface.
func (u *UmbrellaInstance) init(parent *Queue, stoich Stoichiometry) {
	u.parent = parent
	u.stoich = stoich
	u.inner = newQueueWithUpdates(parent.Updates())
	u.inner.updatedBaseTime = u.adjustedBaseTime
	u.inner.SetOnNewMin(u.onInnerNewMin)
}

// Inner is the queue that reaction instances and wait lists bound to this
// umbrella should be enqueued into.
func (u *UmbrellaInstance) Inner() *Queue { return u.inner }

// Begin enqueues the umbrella for the first time. Must be called exactly
// once by the owner (e.g. HierCompartment's constructor), after the inner
// queue is ready to accept sub-streams.
func (u *UmbrellaInstance) Begin() {
	u.updSelf = false
	u.lastBaseT = u.parent.UpdatedBaseTime()
	u.inner.SetBaseTime(u.lastBaseT)
	u.oldA = u.stoich.CalcMarkovA()
	u.parent.Enqueue(u, math.Inf(1))
}

// Trigger is called when the umbrella's projected time reaches the front of
// the parent queue — i.e. the earliest sub-event is due now. It advances
// the inner clock to that instant, performs whatever the umbrella's own
// stoichiometry does (usually nothing — see nullStoich), and dispatches the
// earliest inner stream.
func (u *UmbrellaInstance) Trigger() {
	u.lastBaseT = u.parent.BaseTime()
	u.inner.SetBaseTime(u.inner.PeekTime())

	u.stoich.DoReaction()
	u.stoich.DoReactionExtra()

	// Firing the inner stream repositions it (or removes it), which moves
	// the inner root and fires onInnerNewMin — that's what schedules this
	// umbrella for an Update() call to recompute its own parent-queue time.
	if next := u.inner.PeekStream(); next != nil {
		next.Trigger()
	}
}

// Update recomputes the umbrella's own propensity and re-seats it in the
// parent queue. Runs from the simulation's update-list drain, never
// inline from Trigger/PopUpdate.
func (u *UmbrellaInstance) Update() {
	u.updSelf = false
	u.adjustTime()
	u.oldA = u.stoich.CalcMarkovA()
	u.reenqueue()
}

// PopUpdate is the dependency-change notification hook, identical in shape
// to Instance.PopUpdate: something the umbrella's own propensity depends on
// changed, so defer a full Update() rather than recomputing inline.
func (u *UmbrellaInstance) PopUpdate() {
	if !u.updSelf {
		u.updSelf = true
		u.parent.ScheduleForUpdate(u)
	}
}

// adjustedBaseTime is installed as the inner queue's updatedBaseTime hook:
// any code computing a new duration relative to the inner queue first gets
// the inner clock caught up to the present.
func (u *UmbrellaInstance) adjustedBaseTime() float64 {
	u.adjustTime()
	return u.inner.BaseTime()
}

// adjustTime moves the inner clock forward in proportion to how far the
// outer (parent) clock has advanced since the last adjustment, scaled by
// the umbrella's propensity. A zero propensity leaves the inner clock
// exactly where it was — sub-events stop becoming due, though their state
// can still be mutated from outside (e.g. population changes).
func (u *UmbrellaInstance) adjustTime() {
	cur := u.parent.UpdatedBaseTime()
	if u.oldA > 0 {
		u.inner.SetBaseTime(u.inner.BaseTime() + (cur-u.lastBaseT)*u.oldA)
	}
	u.lastBaseT = cur
}

// reenqueue computes the umbrella's new absolute time in the parent queue:
// the remaining inner-clock distance to the next inner event, projected
// back through the umbrella's propensity.
func (u *UmbrellaInstance) reenqueue() {
	if u.oldA > 0 {
		dt := u.inner.PeekTime() - u.inner.BaseTime()
		u.parent.Reposition(u, u.lastBaseT+dt/u.oldA)
	} else {
		u.parent.Reposition(u, math.Inf(1))
	}
}

func (u *UmbrellaInstance) onInnerNewMin() {
	if !u.updSelf {
		u.updSelf = true
		u.parent.ScheduleForUpdate(u)
	}
}

// Close detaches the umbrella from its parent queue and releases its
// stoichiometry's dependencies. Go has no destructors, so HierCompartment's
// teardown must call this explicitly once its inner queue has been
// neutralized (see hiercompartment.go).
func (u *UmbrellaInstance) Close() {
	if u.event.IsEnqueued() {
		u.parent.Dequeue(u)
	}
	u.stoich.Destroy()
}

// nullStoich is the trivial Stoichiometry used by every Compartment's own
// umbrella: constant propensity 1, no reaction effect of its own. It exists
// purely so a Compartment satisfies Stoichiometry without special-casing
// the umbrella machinery for the "pass-through" case.
type nullStoich struct {
	rng RandSource
}

func (nullStoich) CalcMarkovA() float64  { return 1.0 }
func (nullStoich) DoReaction()           {}
func (nullStoich) DoReactionExtra()      {}
func (nullStoich) Destroy()              {}
func (s nullStoich) RNG() RandSource     { return s.rng }
