package sgns

// releaseEvent is a single delayed population release: amt units of
// species idx scheduled to land at a specific absolute time. It occupies a
// slot in a WaitList's own inner queue; it is never dispatched through the
// generic Stream.Trigger() path — WaitList.Trigger pops and applies it
// directly — so Trigger/Update are unused no-ops that exist only to
// satisfy the Stream interface.
type releaseEvent struct {
	event Event
	idx   int
	amt   int64
}

func (r *releaseEvent) ev() *Event { return &r.event }
func (r *releaseEvent) Trigger()   {}
func (r *releaseEvent) Update()    {}

// WaitList is a compartment's delayed-release queue. It is simultaneously
// an event inside its owning compartment's own inner queue (so the
// compartment's umbrella can dispatch it when the earliest release is due)
// and the queue of pending releaseEvents itself. Whenever the earliest
// pending release changes, it immediately repositions its own slot in the
// compartment's inner queue to match — unlike ordinary reaction instances,
// it never defers through the update list, since nothing about its own
// scheduling depends on anything but the releases it already holds.
type WaitList struct {
	event Event

	owner *Compartment
	inner *Queue

	countAmount int64
}

func (w *WaitList) ev() *Event { return &w.event }

func (w *WaitList) init(owner *Compartment) {
	w.owner = owner
	w.inner = newQueueWithUpdates(owner.Inner().Updates())
	w.inner.SetOnNewMin(w.onInnerNewMin)
}

// Size returns the total amount currently pending release, across every
// species and scheduled time.
func (w *WaitList) Size() int64 { return w.countAmount }

// ReleaseAt schedules amt units of the species at idx to be added to the
// owning compartment at absolute time t.
func (w *WaitList) ReleaseAt(t float64, idx int, amt int64) {
	re := &releaseEvent{idx: idx, amt: amt}
	w.inner.Enqueue(re, t)
	w.countAmount += amt
}

// Trigger fires the earliest pending release: applies it to the owning
// compartment's population (which in turn notifies that species'
// dependents) and removes it from the inner queue.
func (w *WaitList) Trigger() {
	re, ok := w.inner.PeekStream().(*releaseEvent)
	if !ok || re == nil {
		return
	}
	w.owner.ModifyPopulation(re.idx, re.amt)
	w.countAmount -= re.amt
	w.inner.Dequeue(re)
}

// Update is a no-op: a WaitList's own scheduled time only ever changes in
// direct response to ReleaseAt/Trigger, handled by onInnerNewMin below, so
// there's nothing left to recompute when the update list drains it.
func (w *WaitList) Update() {}

func (w *WaitList) onInnerNewMin() {
	t := w.inner.PeekTime()
	outer := w.owner.Inner()
	if w.event.IsEnqueued() {
		outer.Reposition(w, t)
	} else {
		outer.Enqueue(w, t)
	}
}
